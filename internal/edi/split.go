// =============================================================================
// EDI Splitter - Splitter
// =============================================================================
//
// This module partitions the detail records of a file into two contiguous
// halves and wraps each half in a copy of the original envelope and headers.
//
// SPLIT RULE:
//   splitPoint = floor(details / 2)
//   part 1     = details[:splitPoint]    (empty when there is a single detail)
//   part 2     = details[splitPoint:]    (absorbs the odd remainder)
//
// OUTPUT FILE (each part):
//   $$HDR line, H1 line, H2 line, the half's D1 lines, recomputed $$EOF line.
//   Lines of any other kind in the source are not carried over.
//
// =============================================================================

package edi

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// SplitResult holds the two self-contained output files.
type SplitResult struct {
	// Part1 and Part2 are the complete file contents.
	Part1 string
	Part2 string

	// Part1Count and Part2Count are the detail counts plus the two header lines.
	Part1Count int
	Part2Count int

	// DetailCount is the number of detail records in the source file.
	DetailCount int

	// Part1Details and Part2Details are the detail lines carried by each part.
	Part1Details []string
	Part2Details []string
}

// =============================================================================
// OPTIONS
// =============================================================================

type splitOptions struct {
	policy FooterPolicy
}

// SplitOption customises Split.
type SplitOption func(*splitOptions)

// WithSplitPolicy overrides the footer policy used for both parts.
func WithSplitPolicy(policy FooterPolicy) SplitOption {
	return func(o *splitOptions) {
		o.policy = policy
	}
}

// =============================================================================
// SPLIT
// =============================================================================

// Split divides the detail records of content into two balanced files.
//
// RETURNS:
//   - The split result.
//   - A *MissingSectionError or *DuplicateSectionError when the file does not
//     have exactly one $$HDR, H1, H2 and $$EOF line, ErrNoDetailRecords when it
//     has no D1 lines, or a footer error.
func Split(content string, opts ...SplitOption) (*SplitResult, error) {
	options := splitOptions{policy: EmittedCountPolicy}
	for _, opt := range opts {
		opt(&options)
	}

	lines := Classify(content)

	sections, err := envelopeSections(lines)
	if err != nil {
		return nil, err
	}

	var details []Line
	for _, line := range lines {
		if line.Kind == KindDetail {
			details = append(details, line)
		}
	}
	if len(details) == 0 {
		return nil, ErrNoDetailRecords
	}

	splitPoint := len(details) / 2
	first := details[:splitPoint]
	second := details[splitPoint:]

	part1, err := assemblePart(sections, first, options.policy)
	if err != nil {
		return nil, err
	}
	part2, err := assemblePart(sections, second, options.policy)
	if err != nil {
		return nil, err
	}

	return &SplitResult{
		Part1:        part1,
		Part2:        part2,
		Part1Count:   len(first) + 2,
		Part2Count:   len(second) + 2,
		DetailCount:  len(details),
		Part1Details: lineTexts(first),
		Part2Details: lineTexts(second),
	}, nil
}

// envelope holds the four single-occurrence lines of a file.
type envelope struct {
	header  Line
	header1 Line
	header2 Line
	footer  Line
}

// envelopeSections locates the envelope lines, requiring exactly one of each.
func envelopeSections(lines []Line) (envelope, error) {
	var env envelope

	required := []struct {
		kind LineKind
		dst  *Line
	}{
		{KindEnvelope, &env.header},
		{KindHeader1, &env.header1},
		{KindHeader2, &env.header2},
		{KindFooter, &env.footer},
	}

	for _, r := range required {
		count := 0
		for _, line := range lines {
			if line.Kind != r.kind {
				continue
			}
			if count == 0 {
				*r.dst = line
			}
			count++
		}

		switch {
		case count == 0:
			return envelope{}, &MissingSectionError{Section: r.kind}
		case count > 1:
			return envelope{}, &DuplicateSectionError{Section: r.kind, Count: count}
		}
	}

	return env, nil
}

// assemblePart builds one output file around a slice of detail lines.
func assemblePart(env envelope, details []Line, policy FooterPolicy) (string, error) {
	lines := make([]Line, 0, len(details)+4)
	lines = append(lines, env.header, env.header1, env.header2)
	lines = append(lines, details...)
	lines = append(lines, env.footer)

	if err := recomputeFooter(lines, policy); err != nil {
		return "", err
	}

	return Join(lines), nil
}

func lineTexts(lines []Line) []string {
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.Text
	}
	return texts
}
