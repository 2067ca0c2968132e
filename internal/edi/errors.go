// =============================================================================
// EDI Splitter - Engine Errors
// =============================================================================
//
// Every failure the engine can report. All of them are terminal for the single
// operation attempted: the engine is pure and deterministic, so there is no
// retry logic anywhere. Callers re-invoke with corrected input.
//
// =============================================================================

package edi

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrMissingEnvelopeSection is matched by every *MissingSectionError.
	ErrMissingEnvelopeSection = errors.New("missing envelope section")

	// ErrDuplicateEnvelopeSection is matched by every *DuplicateSectionError.
	ErrDuplicateEnvelopeSection = errors.New("duplicate envelope section")

	// ErrNoDetailRecords is returned by Split when the file has no D1 lines.
	ErrNoDetailRecords = errors.New("no D1 detail records found in file")

	// ErrFooterNotFound is returned when no line classifies as a footer.
	ErrFooterNotFound = errors.New("$$EOF footer line not found in file")

	// ErrMalformedRecord marks a D1 line with no order id. Such lines are
	// skipped by the extractor and retained by the remover; it never escapes
	// the package's public operations.
	ErrMalformedRecord = errors.New("malformed detail record")

	// ErrNoOrdersSelected is returned by RemoveOrders together with a valid
	// identity result when the selection is empty.
	ErrNoOrdersSelected = errors.New("no orders selected for removal")

	// ErrCountOverflow is returned when a footer count needs more than 7 digits.
	ErrCountOverflow = errors.New("footer count exceeds 7 digits")
)

// =============================================================================
// SECTION ERRORS
// =============================================================================

// MissingSectionError names the envelope section absent from a file.
type MissingSectionError struct {
	// Section is the kind of line that was expected but not found.
	Section LineKind
}

// Error implements the error interface.
func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("%s line not found in file", e.Section.Tag())
}

// Unwrap lets errors.Is match ErrMissingEnvelopeSection.
func (e *MissingSectionError) Unwrap() error {
	return ErrMissingEnvelopeSection
}

// DuplicateSectionError names an envelope section that occurs more than once.
type DuplicateSectionError struct {
	Section LineKind
	Count   int
}

// Error implements the error interface.
func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("%s line found %d times, expected exactly one", e.Section.Tag(), e.Count)
}

// Unwrap lets errors.Is match ErrDuplicateEnvelopeSection.
func (e *DuplicateSectionError) Unwrap() error {
	return ErrDuplicateEnvelopeSection
}
