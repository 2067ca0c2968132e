// =============================================================================
// EDI Splitter - Rejection Reporter
// =============================================================================
//
// This module turns the orders removed from a file into rejection rows that
// downstream systems use to reconcile what was dropped and why.
//
// ROW LAYOUT:
//   orderId, recordNumber, productId, statusCode, reasonText
//
// PRODUCT IDENTIFIER:
//   Each removed line is scanned token by token (whitespace-delimited):
//     pass 1: ISBN-13, 13 digits starting with 978 or 979
//     pass 2: ISBN-10 / SBN, 9 digits followed by a digit or X
//   The first match wins. No match leaves the identifier empty.
//
// =============================================================================

package rejection

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ginjaninja78/edi-splitter/internal/edi"
)

// DefaultRecordNumber is used when a removed line has no record number.
const DefaultRecordNumber = "00001"

// =============================================================================
// STATUS CODES
// =============================================================================

// statusReasons maps each known status code to its reason text.
var statusReasons = map[string]string{
	"IR": "Invalid Request",
	"CO": "Cancelled Order",
	"NF": "Not Found",
	"OP": "Out of Print",
	"OS": "Out of Stock",
}

// Reason returns the reason text for a status code.
//
// Unknown codes are returned verbatim.
func Reason(code string) string {
	if reason, ok := statusReasons[code]; ok {
		return reason
	}
	return code
}

// IsKnown reports whether code is one of the predefined status codes.
func IsKnown(code string) bool {
	_, ok := statusReasons[code]
	return ok
}

// StatusCodes returns the predefined status codes, sorted.
func StatusCodes() []string {
	codes := make([]string, 0, len(statusReasons))
	for code := range statusReasons {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// =============================================================================
// PRODUCT IDENTIFIERS
// =============================================================================

var (
	isbn13 = regexp.MustCompile(`^97[89][0-9]{10}$`)
	isbn10 = regexp.MustCompile(`^[0-9]{9}[0-9X]$`)
)

// ExtractProductID finds the first ISBN-13, or failing that ISBN-10, token in line.
func ExtractProductID(line string) string {
	tokens := strings.Fields(line)

	for _, token := range tokens {
		if isbn13.MatchString(token) {
			return token
		}
	}
	for _, token := range tokens {
		if isbn10.MatchString(token) {
			return token
		}
	}

	return ""
}

// =============================================================================
// REPORT
// =============================================================================

// Row is one line of the rejection report.
type Row struct {
	OrderID      string
	RecordNumber string
	ProductID    string
	StatusCode   string
	Reason       string
}

// Fields returns the row in report column order.
func (r Row) Fields() []string {
	return []string{r.OrderID, r.RecordNumber, r.ProductID, r.StatusCode, r.Reason}
}

// Generate builds one row per line of every removed order, in the order the
// lines were accumulated.
func Generate(removed []edi.Order, statusCode string) []Row {
	reason := Reason(statusCode)

	var rows []Row
	for _, order := range removed {
		for _, line := range order.Lines {
			recordNumber := line.RecordNumber
			if recordNumber == "" {
				recordNumber = DefaultRecordNumber
			}

			rows = append(rows, Row{
				OrderID:      order.ID,
				RecordNumber: recordNumber,
				ProductID:    ExtractProductID(line.Text),
				StatusCode:   statusCode,
				Reason:       reason,
			})
		}
	}

	return rows
}
