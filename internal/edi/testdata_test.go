package edi

import "strings"

const (
	testEnvelope = "$$HDRTFUK  0023602   20250827181254"
	testHeader1  = "H17000799572     20250827                              C FT0818NM6KS"
	testHeader2  = "H27000799572     ST0071007686               Forward Transit"
	testFooterPf = "$$EOFTFUK  0023602   20250827181254"
	testFooter   = testFooterPf + "0000006"
)

var testDetails = []string{
	"D1A 9780306406157 00001",
	"D1A 9780306406164 00002",
	"D1B 0306406152 00001",
	"D1C 979000000000X 00001",
}

// buildFile joins an envelope around details using sep as the line break.
func buildFile(sep string, details ...string) string {
	lines := []string{testEnvelope, testHeader1, testHeader2}
	lines = append(lines, details...)
	lines = append(lines, testFooter)
	return strings.Join(lines, sep) + sep
}

// detailLines returns the D1 lines of content, in order.
func detailLines(content string) []string {
	var out []string
	for _, line := range Classify(content) {
		if line.Kind == KindDetail {
			out = append(out, line.Text)
		}
	}
	return out
}

// footerLine returns the last line of content.
func footerLine(content string) string {
	lines := SplitLines(content)
	return lines[len(lines)-1]
}
