package fem

import (
	"regexp"
	"strings"
)

// Occurrence is one marker found within a single line.
// Start and End are byte offsets of Full within the line.
type Occurrence struct {
	Full  string
	Text  string
	Start int
	End   int
}

// padding matches the whitespace trimmed from both ends of a payload.
const padding = `[\s\p{Zs}]*`

// patterns is built once from Markers and never mutated.
var patterns = compilePatterns()

// openingMarkers holds every kind's open delimiter, in processing order.
var openingMarkers = func() []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Markers[k].Open)
	}
	return out
}()

func compilePatterns() map[Kind]*regexp.Regexp {
	out := make(map[Kind]*regexp.Regexp, len(kinds))
	for _, k := range kinds {
		d := Markers[k]
		// Non-greedy payload, trimmed of ASCII and Unicode spaces. `.` never crosses a newline.
		out[k] = regexp.MustCompile(regexp.QuoteMeta(d.Open) + padding + `(.*?)` + padding + regexp.QuoteMeta(d.Close))
	}
	return out
}

// containsNestedMarker reports whether text holds any kind's opening delimiter.
func containsNestedMarker(text string) bool {
	for _, marker := range openingMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Match returns the accepted occurrences of kind k in line, left to right.
// Candidates whose payload contains an opening delimiter are dropped.
func Match(line string, k Kind) []Occurrence {
	accepted, _ := scan(line, k)
	return accepted
}

// scan splits the candidates of kind k into accepted and vetoed occurrences.
func scan(line string, k Kind) (accepted, vetoed []Occurrence) {
	pattern, ok := patterns[k]
	if !ok {
		return nil, nil
	}
	for _, idx := range pattern.FindAllStringSubmatchIndex(line, -1) {
		m := Occurrence{
			Full:  line[idx[0]:idx[1]],
			Text:  line[idx[2]:idx[3]],
			Start: idx[0],
			End:   idx[1],
		}
		if containsNestedMarker(m.Text) {
			vetoed = append(vetoed, m)
			continue
		}
		accepted = append(accepted, m)
	}
	return accepted, vetoed
}
