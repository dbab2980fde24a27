package fem

import (
	"sort"
	"strings"
)

// Annotation is a marker occurrence anchored to the line it was found on.
// Markers never span lines, so StartLine always equals EndLine.
type Annotation struct {
	Kind      Kind   `json:"type"`
	Text      string `json:"text"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// Skipped is a marker-like occurrence that was left in place because its
// payload contained an opening delimiter.
type Skipped struct {
	Line int    `json:"line"`
	Kind Kind   `json:"type"`
	Full string `json:"marker"`
}

// Result is the full outcome of parsing one document.
type Result struct {
	Annotations []Annotation
	Clean       string
	Skipped     []Skipped
}

// Parse extracts annotations from content and returns it with every
// accepted marker removed. The error is always nil; malformed markers are
// left verbatim instead.
func Parse(content string) ([]Annotation, string, error) {
	res := ParseDetailed(content)
	return res.Annotations, res.Clean, nil
}

// ParseDetailed is Parse plus the list of vetoed occurrences.
func ParseDetailed(content string) Result {
	lines := strings.Split(content, "\n")
	var res Result
	cleanLines := make([]string, 0, len(lines))

	for i, line := range lines {
		lineNum := i + 1
		var spans []Occurrence

		// Every kind scans the original line; only removal is combined.
		for _, k := range kinds {
			accepted, vetoed := scan(line, k)
			for _, m := range accepted {
				res.Annotations = append(res.Annotations, Annotation{
					Kind:      k,
					Text:      m.Text,
					StartLine: lineNum,
					EndLine:   lineNum,
				})
			}
			for _, m := range vetoed {
				res.Skipped = append(res.Skipped, Skipped{Line: lineNum, Kind: k, Full: m.Full})
			}
			spans = append(spans, accepted...)
		}

		cleanLines = append(cleanLines, stripSpans(line, spans))
	}

	res.Clean = strings.Join(cleanLines, "\n")
	return res
}

// stripSpans removes the accepted occurrences from line. Accepted spans of
// different kinds cannot overlap: an overlap would put one open delimiter
// inside the other's payload, which vetoes it.
func stripSpans(line string, spans []Occurrence) string {
	if len(spans) == 0 {
		return line
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	var b strings.Builder
	b.Grow(len(line))
	pos := 0
	for _, s := range spans {
		if s.Start < pos {
			continue
		}
		b.WriteString(line[pos:s.Start])
		pos = s.End
	}
	b.WriteString(line[pos:])
	return b.String()
}
