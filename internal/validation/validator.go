// =============================================================================
// EDI Splitter - Structure Validator
// =============================================================================
//
// This module inspects a classified EDI file and reports every structural
// problem it finds, instead of stopping at the first one like the engine does.
// It backs `edisplit process --dry-run` and the pre-flight check of `split`.
//
// CHECKS:
//   1. Envelope sections: exactly one $$HDR, H1, H2 and $$EOF line   (error)
//   2. Detail records: at least one D1 line                           (error)
//   3. Detail records: every D1 line carries an order id              (warning)
//   4. Footer count: the stated count matches the emitted-count rule  (warning)
//   5. Unknown lines: lines matching no record type                   (warning)
//
// ERROR HANDLING:
//   - Findings are collected, not returned as the first error
//   - Each finding names the line and section involved
//   - Warnings never make a file invalid unless TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/edi-splitter/internal/edi"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// FINDING TYPES
// =============================================================================

// Finding is a single structural problem.
type Finding struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Section is the record type involved.
	Section edi.LineKind

	// Line is the 1-based line number, or 0 when the finding concerns the
	// whole file (e.g. a missing section).
	Line int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (f *Finding) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("[%s] line %d (%s): %s", strings.ToUpper(f.Severity), f.Line, f.Section.Tag(), f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(f.Severity), f.Section.Tag(), f.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the outcome of validating one file.
type Result struct {
	// IsValid is true if there are no error-level findings.
	IsValid bool

	// Findings contains every finding, errors and warnings, in check order.
	Findings []*Finding

	// ErrorCount and WarningCount tally Findings by severity.
	ErrorCount   int
	WarningCount int

	// DetailCount is the number of D1 lines in the file.
	DetailCount int

	// OrderCount is the number of distinct orders.
	OrderCount int
}

// Options contains options for validation.
type Options struct {
	// TreatWarningsAsErrors makes any warning invalidate the file.
	TreatWarningsAsErrors bool

	// Policy is the footer rule used for the count check.
	Policy edi.FooterPolicy
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{
		Policy: edi.EmittedCountPolicy,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks file content with the default options.
func Validate(content string) *Result {
	return ValidateWithOptions(content, DefaultOptions())
}

// ValidateWithOptions checks file content and returns every finding.
func ValidateWithOptions(content string, options Options) *Result {
	lines := edi.Classify(content)
	result := &Result{
		IsValid:     true,
		DetailCount: edi.CountKind(lines, edi.KindDetail),
		OrderCount:  len(edi.ExtractOrders(lines)),
	}

	add := func(f *Finding) {
		result.Findings = append(result.Findings, f)
		if f.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
			return
		}
		result.WarningCount++
		if options.TreatWarningsAsErrors {
			result.IsValid = false
		}
	}

	// =========================================================================
	// ENVELOPE SECTIONS
	// =========================================================================

	for _, kind := range []edi.LineKind{edi.KindEnvelope, edi.KindHeader1, edi.KindHeader2, edi.KindFooter} {
		switch n := edi.CountKind(lines, kind); {
		case n == 0:
			add(&Finding{Severity: SeverityError, Section: kind, Message: "line not found in file"})
		case n > 1:
			add(&Finding{Severity: SeverityError, Section: kind, Message: fmt.Sprintf("found %d times, expected exactly one", n)})
		}
	}

	// =========================================================================
	// DETAIL RECORDS
	// =========================================================================

	if result.DetailCount == 0 {
		add(&Finding{Severity: SeverityError, Section: edi.KindDetail, Message: "no detail records found"})
	}

	for _, line := range lines {
		switch line.Kind {
		case edi.KindDetail:
			if _, _, err := edi.ParseDetail(line.Text); err != nil {
				add(&Finding{Severity: SeverityWarning, Section: edi.KindDetail, Line: line.Position + 1, Message: "record has no order id"})
			}
		case edi.KindOther:
			if strings.TrimSpace(line.Text) != "" {
				add(&Finding{Severity: SeverityWarning, Section: edi.KindOther, Line: line.Position + 1, Message: "unrecognised record type"})
			}
		}
	}

	// =========================================================================
	// FOOTER COUNT
	// =========================================================================

	if i := edi.FindFooter(lines); i >= 0 {
		footer := lines[i]
		stated, ok := edi.FooterCount(footer.Text)
		expected := options.Policy.Count(lines)

		switch {
		case !ok:
			add(&Finding{Severity: SeverityWarning, Section: edi.KindFooter, Line: footer.Position + 1, Message: "footer does not end in a 7-digit count"})
		case stated != expected:
			add(&Finding{
				Severity: SeverityWarning,
				Section:  edi.KindFooter,
				Line:     footer.Position + 1,
				Message:  fmt.Sprintf("footer count %d does not match %d (%s rule)", stated, expected, options.Policy),
			})
		}
	}

	return result
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatFindings formats findings for display or logging.
func FormatFindings(findings []*Finding) string {
	if len(findings) == 0 {
		return "No validation findings."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n", len(findings)))

	for i, f := range findings {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Error()))
	}

	return builder.String()
}
