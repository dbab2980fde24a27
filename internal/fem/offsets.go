package fem

import (
	"strings"
	"unicode/utf8"
)

// OffsetToLine returns the 1-based line holding the rune at offset.
func OffsetToLine(content string, offset int) int {
	line := 1
	i := 0
	for _, r := range content {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
		}
		i++
	}
	return line
}

// LineCount is the number of lines Parse sees in content.
func LineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

// LineSpan returns the rune range [start, end) of a 1-based line, excluding
// its newline. Lines outside the content map to the nearest existing line.
func LineSpan(content string, line int) (start, end int) {
	lines := strings.Split(content, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	for _, l := range lines[:line-1] {
		start += utf8.RuneCountInString(l) + 1
	}
	return start, start + utf8.RuneCountInString(lines[line-1])
}

// ToOffsets maps line-anchored annotations onto the clean content they were
// parsed from, spanning each annotation's whole line.
func ToOffsets(clean string, anns []Annotation) []OffsetAnnotation {
	out := make([]OffsetAnnotation, 0, len(anns))
	for _, a := range anns {
		start, _ := LineSpan(clean, a.StartLine)
		_, end := LineSpan(clean, a.EndLine)
		out = append(out, OffsetAnnotation{
			Kind:        a.Kind,
			Text:        DecodeText(a.Text),
			StartOffset: start,
			EndOffset:   end,
		})
	}
	return out
}

// RuneLen is the length of content in the unit offsets are counted in.
func RuneLen(content string) int {
	return utf8.RuneCountInString(content)
}
