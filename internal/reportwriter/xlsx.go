// =============================================================================
// EDI Splitter - Report Writer (XLSX)
// =============================================================================
//
// This module writes spreadsheet versions of the rejection report and of the
// order listing, for users who review removals in Excel.
//
// WORKBOOK LAYOUT:
//   Rejection report  sheet "Rejections": Order ID | Record | Product ID | Status | Reason
//   Order listing     sheet "Orders":     Order ID | Records | First Record | Last Record
//
//   Row 1 holds bold column headers; data starts at row 2. Every cell is
//   written as text so record numbers keep their leading zeros.
//
// =============================================================================

package reportwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/edi-splitter/internal/edi"
	"github.com/ginjaninja78/edi-splitter/internal/rejection"
)

// Sheet names.
const (
	RejectionSheet = "Rejections"
	OrdersSheet    = "Orders"
)

var (
	rejectionHeaders = []string{"Order ID", "Record", "Product ID", "Status", "Reason"}
	orderHeaders     = []string{"Order ID", "Records", "First Record", "Last Record"}
)

// =============================================================================
// WRITERS
// =============================================================================

// WriteRejectionXLSX saves rejection rows as a workbook at path.
func WriteRejectionXLSX(path string, rows []rejection.Row) error {
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = row.Fields()
	}

	return writeSheet(path, RejectionSheet, rejectionHeaders, data)
}

// WriteOrdersXLSX saves an order listing as a workbook at path.
func WriteOrdersXLSX(path string, orders []edi.Order) error {
	data := make([][]string, len(orders))
	for i, order := range orders {
		data[i] = []string{
			order.ID,
			fmt.Sprintf("%d", order.RecordCount()),
			order.FirstRecord(),
			order.LastRecord(),
		}
	}

	return writeSheet(path, OrdersSheet, orderHeaders, data)
}

// writeSheet creates a single-sheet workbook with a bold header row.
func writeSheet(path, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	return nil
}

// setRow writes values as text cells starting at column A.
func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellStr(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
