// =============================================================================
// EDI Splitter - Report Writer (CSV)
// =============================================================================
//
// This module renders rejection rows in the delimited format expected by the
// downstream reconciliation import.
//
// FORMAT:
//   orderId,recordNumber,productId,statusCode,reasonText
//   - one line per removed record
//   - no header row
//   - `\n` line endings
//
// =============================================================================

package reportwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ginjaninja78/edi-splitter/internal/rejection"
)

// RejectionCSV renders rows as comma-delimited text.
func RejectionCSV(rows []rejection.Row) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.UseCRLF = false

	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return nil, fmt.Errorf("failed to write rejection row for order %s: %w", row.OrderID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush rejection report: %w", err)
	}

	return buf.Bytes(), nil
}
