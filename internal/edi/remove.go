// =============================================================================
// EDI Splitter - Order Remover
// =============================================================================
//
// This module drops every detail record belonging to a selected set of orders
// and re-emits the remainder with a recomputed footer.
//
// RETENTION RULES:
//   - D1 lines whose order id is selected are dropped.
//   - D1 lines without an order id are kept.
//   - Every other line is kept unmodified, in its original position, except
//     the footer, whose count is recomputed.
//
// =============================================================================

package edi

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// RemovalResult holds the cleaned file and what was removed from it.
type RemovalResult struct {
	// Content is the cleaned file.
	Content string

	// RemovedCount is the number of detail lines dropped.
	RemovedCount int

	// RetainedDetails is the number of detail lines left in Content.
	RetainedDetails int

	// RemovedOrders are the orders whose id was selected, sorted by id. They
	// feed the rejection report.
	RemovedOrders []Order
}

// =============================================================================
// OPTIONS
// =============================================================================

type removeOptions struct {
	policy FooterPolicy
}

// RemoveOption customises RemoveOrders.
type RemoveOption func(*removeOptions)

// WithRemovePolicy overrides the footer policy used for the cleaned file.
func WithRemovePolicy(policy FooterPolicy) RemoveOption {
	return func(o *removeOptions) {
		o.policy = policy
	}
}

// =============================================================================
// REMOVE
// =============================================================================

// RemoveOrders drops every detail record of the given orders from content.
//
// RETURNS:
//   - The removal result.
//   - ErrFooterNotFound (with a nil result) when the file has no footer.
//   - ErrNoOrdersSelected when orderIDs is empty. In that case the result is
//     still returned: it is the input with its footer recomputed, and callers
//     should treat the error as a warning.
func RemoveOrders(content string, orderIDs []string, opts ...RemoveOption) (*RemovalResult, error) {
	options := removeOptions{policy: RetainedMinusImportPolicy}
	for _, opt := range opts {
		opt(&options)
	}

	selected := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		selected[id] = struct{}{}
	}

	lines := Classify(content)
	if FindFooter(lines) < 0 {
		return nil, ErrFooterNotFound
	}

	result := &RemovalResult{}
	kept := make([]Line, 0, len(lines))

	for _, line := range lines {
		if line.Kind == KindDetail {
			orderID, _, err := ParseDetail(line.Text)
			if err == nil {
				if _, drop := selected[orderID]; drop {
					result.RemovedCount++
					continue
				}
			}
			result.RetainedDetails++
		}
		kept = append(kept, line)
	}

	if err := recomputeFooter(kept, options.policy); err != nil {
		return nil, err
	}
	result.Content = Join(kept)

	for _, order := range ExtractOrders(lines) {
		if _, ok := selected[order.ID]; ok {
			result.RemovedOrders = append(result.RemovedOrders, order)
		}
	}

	if len(selected) == 0 {
		return result, ErrNoOrdersSelected
	}

	return result, nil
}
