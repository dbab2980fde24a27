package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"fabbro/internal/fem"
)

const snippetWidth = 80

// Entry is one annotation resolved against the clean content.
type Entry struct {
	Kind      fem.Kind `json:"type"`
	Text      string   `json:"text"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Snippet   string   `json:"snippet"`
}

func (e Entry) LineRange() string {
	if e.StartLine == e.EndLine {
		return fmt.Sprintf("Line %d", e.StartLine)
	}
	return fmt.Sprintf("Lines %d-%d", e.StartLine, e.EndLine)
}

// Build resolves offset annotations into summary entries ordered by where
// they start in clean.
func Build(clean string, anns []fem.OffsetAnnotation) []Entry {
	sorted := append([]fem.OffsetAnnotation(nil), anns...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartOffset < sorted[j].StartOffset })

	runes := []rune(clean)
	out := make([]Entry, 0, len(sorted))
	for _, a := range sorted {
		kind, ok := fem.NormalizeKind(string(a.Kind))
		if !ok {
			kind = a.Kind
		}
		start, end := clampRange(a.StartOffset, a.EndOffset, len(runes))
		last := end - 1
		if last < start {
			last = start
		}
		out = append(out, Entry{
			Kind:      kind,
			Text:      a.Text,
			StartLine: fem.OffsetToLine(clean, start),
			EndLine:   fem.OffsetToLine(clean, last),
			Snippet:   truncateSnippet(string(runes[start:end])),
		})
	}
	return out
}

// FromDocument parses a marked-up body and builds its summary entries. Nested
// markers that were left in place are returned so callers can report them.
func FromDocument(body string) ([]Entry, []fem.Skipped) {
	parsed := fem.ParseDetailed(body)
	return Build(parsed.Clean, fem.ToOffsets(parsed.Clean, parsed.Annotations)), parsed.Skipped
}

// Markdown renders entries as the review summary handed back to authors.
func Markdown(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		b.WriteString("### " + e.LineRange() + "\n")
		b.WriteString("> \"" + strings.ReplaceAll(e.Snippet, "\n", "\n> ") + "\"\n")
		b.WriteString("**" + kindLabel(e.Kind) + ":** " + e.Text)
		parts = append(parts, b.String())
	}
	total := len(entries)
	plural := "s"
	if total == 1 {
		plural = ""
	}
	footer := fmt.Sprintf("---\n%d annotation%s total", total, plural)
	return "## Review Summary\n\n" + strings.Join(parts, "\n\n") + "\n\n" + footer
}

func kindLabel(k fem.Kind) string {
	s := string(k)
	if s == "" {
		return "Note"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateSnippet(s string) string {
	if runewidth.StringWidth(s) <= snippetWidth {
		return s
	}
	return runewidth.Truncate(s, snippetWidth, "…")
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}
