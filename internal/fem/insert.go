package fem

import (
	"sort"
	"strings"
)

// OffsetAnnotation addresses the half-open rune range [StartOffset, EndOffset)
// of clean content. Kind may be KindSuggest. Text is plain text; Insert
// encodes it.
type OffsetAnnotation struct {
	Kind        Kind   `json:"type"`
	Text        string `json:"text"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

// Insert re-inserts a marker for every annotation into clean content. Each
// marker is attached right after its span, at EndOffset. Annotations whose
// kind has no delimiters are skipped. Markers sharing an insertion point are
// written in StartOffset order. Offsets are trusted; an insertion point
// outside the content is pinned to the nearest end so Insert never panics.
func Insert(content string, anns []OffsetAnnotation) string {
	type insertion struct {
		at     int
		start  int
		marker string
	}
	ins := make([]insertion, 0, len(anns))
	for _, a := range anns {
		k, ok := NormalizeKind(string(a.Kind))
		if !ok {
			continue
		}
		d := Markers[k]
		ins = append(ins, insertion{at: a.EndOffset, start: a.StartOffset, marker: d.Open + " " + EncodeText(a.Text) + " " + d.Close})
	}
	if len(ins) == 0 {
		return content
	}
	// Insertion points are in terms of the untouched content, so splicing in
	// a single left-to-right pass keeps every one of them valid. Markers that
	// share a point are ordered by span start, matching summary order.
	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].at != ins[j].at {
			return ins[i].at < ins[j].at
		}
		return ins[i].start < ins[j].start
	})

	var b strings.Builder
	b.Grow(len(content) + len(ins)*16)
	next, runeIdx, written := 0, 0, 0
	for byteIdx := range content {
		for next < len(ins) && ins[next].at <= runeIdx {
			b.WriteString(content[written:byteIdx])
			b.WriteString(ins[next].marker)
			written = byteIdx
			next++
		}
		runeIdx++
	}
	b.WriteString(content[written:])
	for ; next < len(ins); next++ {
		b.WriteString(ins[next].marker)
	}
	return b.String()
}

// EncodeText escapes backslashes and newlines so a marker stays on one line
// and DecodeText can restore the text exactly.
func EncodeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// DecodeText reverses EncodeText. A backslash not followed by `\` or `n` is
// kept as written, so hand-typed payloads such as C:\tmp survive.
func DecodeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// HasMarkerSyntax reports whether text contains any delimiter token. Such
// text cannot survive a round trip through Insert and Parse.
func HasMarkerSyntax(text string) bool {
	for _, k := range kinds {
		d := Markers[k]
		if strings.Contains(text, d.Open) || strings.Contains(text, d.Close) {
			return true
		}
	}
	return false
}
