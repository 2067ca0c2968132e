// =============================================================================
// EDI Splitter - Footer Recalculator
// =============================================================================
//
// The `$$EOF` footer ends with a 7-digit record count. Whenever lines are
// dropped or regrouped the count has to be rewritten.
//
// COUNT POLICIES:
//   Two different counting rules exist in the downstream tooling and both are
//   kept as named policies instead of being merged into one:
//
//   EmittedCountPolicy          non-empty lines excluding the footer, minus 1
//                               (used by the splitter)
//   RetainedMinusImportPolicy   non-empty lines including the footer, minus 2
//                               (used by the remover)
//
// FOOTER FORMAT:
//   The new footer is the template footer with its last 7 characters replaced
//   by the count, zero-padded to 7 digits.
//
// =============================================================================

package edi

import (
	"fmt"
	"strings"
	"unicode"
)

// footerCountWidth is the number of trailing digits holding the count.
const footerCountWidth = 7

// maxFooterCount is the largest count that fits in footerCountWidth digits.
const maxFooterCount = 9999999

// =============================================================================
// POLICIES
// =============================================================================

// FooterPolicy selects how the footer count is derived from a file's lines.
type FooterPolicy int

const (
	// EmittedCountPolicy counts non-empty lines excluding the footer, minus 1.
	EmittedCountPolicy FooterPolicy = iota

	// RetainedMinusImportPolicy counts non-empty lines including the footer, minus 2.
	RetainedMinusImportPolicy
)

// Policy names as they appear in configuration.
const (
	PolicyNameEmitted             = "emitted"
	PolicyNameRetainedMinusImport = "retained-minus-import"
)

// String returns the configuration name of the policy.
func (p FooterPolicy) String() string {
	switch p {
	case EmittedCountPolicy:
		return PolicyNameEmitted
	case RetainedMinusImportPolicy:
		return PolicyNameRetainedMinusImport
	default:
		return fmt.Sprintf("FooterPolicy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration name to a FooterPolicy.
func ParsePolicy(name string) (FooterPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyNameEmitted:
		return EmittedCountPolicy, nil
	case PolicyNameRetainedMinusImport:
		return RetainedMinusImportPolicy, nil
	default:
		return 0, fmt.Errorf("unknown footer policy %q (valid: %s, %s)",
			name, PolicyNameEmitted, PolicyNameRetainedMinusImport)
	}
}

// Count derives the footer count from the full file, footer line included.
func (p FooterPolicy) Count(lines []Line) int {
	switch p {
	case RetainedMinusImportPolicy:
		nonEmpty := 0
		for _, line := range lines {
			if strings.TrimSpace(line.Text) != "" {
				nonEmpty++
			}
		}
		return nonEmpty - 2

	default:
		nonEmpty := 0
		for _, line := range lines {
			if line.Kind == KindFooter {
				continue
			}
			if strings.TrimSpace(line.Text) != "" {
				nonEmpty++
			}
		}
		return nonEmpty - 1
	}
}

// =============================================================================
// FOOTER REWRITE
// =============================================================================

// FindFooter returns the index of the last footer line, or -1.
func FindFooter(lines []Line) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Kind == KindFooter {
			return i
		}
	}
	return -1
}

// UpdateFooter computes the rewritten footer line for a reassembled file.
//
// PARAMETERS:
//   - lines: The full reassembled file, including the template footer line.
//   - policy: The counting rule to apply.
//
// RETURNS:
//   - The new footer text.
//   - ErrFooterNotFound if no line is a footer, ErrCountOverflow if the count
//     does not fit in 7 digits.
func UpdateFooter(lines []Line, policy FooterPolicy) (string, error) {
	i := FindFooter(lines)
	if i < 0 {
		return "", ErrFooterNotFound
	}

	return FormatFooter(lines[i].Text, policy.Count(lines))
}

// FormatFooter replaces the trailing 7 characters of a footer with count.
//
// Trailing whitespace on the template is dropped first. A template shorter than
// 7 characters is kept whole and the count is appended. Negative counts are
// written as zero.
func FormatFooter(template string, count int) (string, error) {
	if count < 0 {
		count = 0
	}
	if count > maxFooterCount {
		return "", fmt.Errorf("%w: %d", ErrCountOverflow, count)
	}

	prefix := strings.TrimRightFunc(template, unicode.IsSpace)
	if len(prefix) >= footerCountWidth {
		prefix = prefix[:len(prefix)-footerCountWidth]
	}

	return fmt.Sprintf("%s%0*d", prefix, footerCountWidth, count), nil
}

// FooterCount reads the trailing 7-digit count of a footer line.
//
// The second return value is false when the line does not end in 7 digits.
func FooterCount(footer string) (int, bool) {
	text := strings.TrimRightFunc(footer, unicode.IsSpace)
	if len(text) < footerCountWidth {
		return 0, false
	}

	count := 0
	for _, r := range text[len(text)-footerCountWidth:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		count = count*10 + int(r-'0')
	}
	return count, true
}

// recomputeFooter rewrites the last footer line of lines in place.
func recomputeFooter(lines []Line, policy FooterPolicy) error {
	i := FindFooter(lines)
	if i < 0 {
		return ErrFooterNotFound
	}

	footer, err := UpdateFooter(lines, policy)
	if err != nil {
		return err
	}

	lines[i].Text = footer
	return nil
}
