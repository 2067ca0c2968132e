// =============================================================================
// EDI Splitter - Order Extractor
// =============================================================================
//
// This module groups D1 detail records into orders keyed by the order number
// embedded right after the `D1` tag.
//
// DETAIL RECORD TOKENS (after dropping the `D1` tag, split on whitespace):
//   token[0]  order id        (any shape, not validated as numeric)
//   token[1]  item identifier (unused)
//   token[2]  record number   (optional, empty when absent)
//
// ORDERING:
//   Orders are accumulated in first-seen order during the scan and returned
//   sorted by id using plain string comparison, so "10" sorts before "2".
//
// =============================================================================

package edi

import (
	"sort"
	"strings"
)

// =============================================================================
// ORDER STRUCTURES
// =============================================================================

// OrderLine is one detail record belonging to an order.
type OrderLine struct {
	// Text is the untrimmed detail line.
	Text string

	// Position is the 0-based index of the line in the source file.
	Position int

	// RecordNumber is the third token of the record, or "" when absent.
	RecordNumber string
}

// Order is the set of detail records sharing an order id, in file order.
type Order struct {
	ID    string
	Lines []OrderLine
}

// RecordCount returns the number of detail records in the order.
func (o Order) RecordCount() int {
	return len(o.Lines)
}

// FirstRecord returns the record number of the first detail record.
func (o Order) FirstRecord() string {
	if len(o.Lines) == 0 {
		return ""
	}
	return o.Lines[0].RecordNumber
}

// LastRecord returns the record number of the last detail record.
func (o Order) LastRecord() string {
	if len(o.Lines) == 0 {
		return ""
	}
	return o.Lines[len(o.Lines)-1].RecordNumber
}

// =============================================================================
// EXTRACTION
// =============================================================================

// ParseDetail pulls the order id and record number out of a D1 line.
//
// RETURNS:
//   - The order id and record number ("" when the record has fewer than 3 tokens).
//   - ErrMalformedRecord when nothing follows the `D1` tag.
func ParseDetail(text string) (orderID, recordNumber string, err error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(prefixDetail) {
		return "", "", ErrMalformedRecord
	}

	fields := strings.Fields(trimmed[len(prefixDetail):])
	if len(fields) == 0 {
		return "", "", ErrMalformedRecord
	}

	if len(fields) > 2 {
		recordNumber = fields[2]
	}

	return fields[0], recordNumber, nil
}

// ExtractOrders groups the detail lines of a classified file into orders.
//
// Malformed detail lines are skipped. The result is sorted by order id.
func ExtractOrders(lines []Line) []Order {
	index := make(map[string]int)
	var orders []Order

	for _, line := range lines {
		if line.Kind != KindDetail {
			continue
		}

		orderID, recordNumber, err := ParseDetail(line.Text)
		if err != nil {
			continue
		}

		i, exists := index[orderID]
		if !exists {
			i = len(orders)
			index[orderID] = i
			orders = append(orders, Order{ID: orderID})
		}

		orders[i].Lines = append(orders[i].Lines, OrderLine{
			Text:         line.Text,
			Position:     line.Position,
			RecordNumber: recordNumber,
		})
	}

	sort.SliceStable(orders, func(a, b int) bool {
		return orders[a].ID < orders[b].ID
	})

	return orders
}

// ExtractOrdersFromContent classifies raw content and extracts its orders.
func ExtractOrdersFromContent(content string) []Order {
	return ExtractOrders(Classify(content))
}
