// =============================================================================
// EDI Splitter - Line Classifier
// =============================================================================
//
// This module tags each raw line of an EDI order file by fixed-prefix sniffing.
// It is the leaf of the engine: every other component works on classified
// lines and never looks at prefixes itself.
//
// FILE LAYOUT:
//   $$HDR...            Envelope (one per file)
//   H1...               Header 1 (one per file)
//   H2...               Header 2 (one per file)
//   D1<order> ...       Detail records (zero or more)
//   $$EOF...nnnnnnn     Footer, ending in a 7-digit count
//
// MATCHING:
//   Prefixes are tested against the line with surrounding whitespace trimmed,
//   while the untrimmed text is what gets stored and emitted. Both `$$EOF` and
//   the shortened `$EOF` spelling classify as a footer.
//
// =============================================================================

package edi

import (
	"regexp"
	"strings"
)

// =============================================================================
// LINE KINDS
// =============================================================================

// LineKind is the tag assigned to a line by the classifier.
type LineKind int

const (
	// KindOther is any line that matches none of the known prefixes.
	KindOther LineKind = iota

	// KindEnvelope is the `$$HDR` envelope start line.
	KindEnvelope

	// KindHeader1 is the `H1` header line.
	KindHeader1

	// KindHeader2 is the `H2` header line.
	KindHeader2

	// KindDetail is a `D1` detail record.
	KindDetail

	// KindFooter is the `$$EOF` (or `$EOF`) envelope end line.
	KindFooter
)

// String returns a lowercase name for the kind, used in logs.
func (k LineKind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindHeader1:
		return "header1"
	case KindHeader2:
		return "header2"
	case KindDetail:
		return "detail"
	case KindFooter:
		return "footer"
	default:
		return "other"
	}
}

// Tag returns the record tag as it appears in the file, used in error messages.
func (k LineKind) Tag() string {
	switch k {
	case KindEnvelope:
		return prefixEnvelope
	case KindHeader1:
		return prefixHeader1
	case KindHeader2:
		return prefixHeader2
	case KindDetail:
		return prefixDetail
	case KindFooter:
		return prefixFooter
	default:
		return "other"
	}
}

// =============================================================================
// RECORD PREFIXES
// =============================================================================

const (
	prefixEnvelope    = "$$HDR"
	prefixHeader1     = "H1"
	prefixHeader2     = "H2"
	prefixDetail      = "D1"
	prefixFooter      = "$$EOF"
	prefixFooterShort = "$EOF"
)

// Line is a raw line of the file together with its classification.
type Line struct {
	// Text is the original, untrimmed line content without the line terminator.
	Text string

	// Kind is the classifier's tag for this line.
	Kind LineKind

	// Position is the 0-based index of the line in the source file.
	Position int
}

// lineBreak matches both LF and CRLF terminators.
var lineBreak = regexp.MustCompile(`\r?\n`)

// =============================================================================
// CLASSIFIER FUNCTIONS
// =============================================================================

// ClassifyLine tags a single line.
//
// Precedence: envelope, header 1, header 2, detail, footer, other.
func ClassifyLine(line string) LineKind {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, prefixEnvelope):
		return KindEnvelope
	case strings.HasPrefix(trimmed, prefixHeader1):
		return KindHeader1
	case strings.HasPrefix(trimmed, prefixHeader2):
		return KindHeader2
	case strings.HasPrefix(trimmed, prefixDetail):
		return KindDetail
	case strings.HasPrefix(trimmed, prefixFooter), strings.HasPrefix(trimmed, prefixFooterShort):
		return KindFooter
	default:
		return KindOther
	}
}

// SplitLines breaks file content into lines on `\n` or `\r\n`.
//
// A terminating newline does not produce a trailing empty line, so
// "a\nb\n" and "a\nb" both yield [a b]. Empty lines inside the file are kept.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}

	lines := lineBreak.Split(content, -1)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// Classify splits content into lines and tags each one.
func Classify(content string) []Line {
	raw := SplitLines(content)
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{
			Text:     text,
			Kind:     ClassifyLine(text),
			Position: i,
		}
	}
	return lines
}

// Join renders lines back into file content: `\n`-separated and `\n`-terminated.
func Join(lines []Line) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// CountKind returns how many lines carry the given kind.
func CountKind(lines []Line, kind LineKind) int {
	n := 0
	for _, line := range lines {
		if line.Kind == kind {
			n++
		}
	}
	return n
}
