package review

import (
	"strings"
	"testing"

	"fabbro/internal/fem"
)

func TestBuildSortsAndResolvesLines(t *testing.T) {
	clean := "first line\nsecond line\nthird line"
	entries := Build(clean, []fem.OffsetAnnotation{
		{Kind: fem.KindQuestion, Text: "why?", StartOffset: 11, EndOffset: 33},
		{Kind: fem.KindSuggest, Text: "1st", StartOffset: 0, EndOffset: 5},
	})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != fem.KindChange || entries[0].Snippet != "first" || entries[0].LineRange() != "Line 1" {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
	if entries[1].StartLine != 2 || entries[1].EndLine != 3 || entries[1].LineRange() != "Lines 2-3" {
		t.Fatalf("unexpected second entry: %#v", entries[1])
	}
}

func TestBuildTruncatesLongSnippets(t *testing.T) {
	clean := strings.Repeat("x", 200)
	entries := Build(clean, []fem.OffsetAnnotation{{Kind: fem.KindComment, Text: "long", StartOffset: 0, EndOffset: 200}})
	if !strings.HasSuffix(entries[0].Snippet, "…") {
		t.Fatalf("expected ellipsis, got %q", entries[0].Snippet)
	}
	if w := len([]rune(entries[0].Snippet)); w != snippetWidth {
		t.Fatalf("expected %d runes, got %d", snippetWidth, w)
	}
}

func TestBuildClampsOffsets(t *testing.T) {
	entries := Build("short", []fem.OffsetAnnotation{{Kind: fem.KindKeep, Text: "k", StartOffset: 3, EndOffset: 99}})
	if entries[0].Snippet != "rt" || entries[0].StartLine != 1 {
		t.Fatalf("unexpected entry: %#v", entries[0])
	}
}

func TestFromDocumentDecodesText(t *testing.T) {
	entries, skipped := FromDocument("alpha {>> two\\nlines <<}\nbeta")
	if len(entries) != 1 || len(skipped) != 0 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "two\nlines" || entries[0].Snippet != "alpha " {
		t.Fatalf("unexpected entry: %#v", entries[0])
	}
}

func TestFromDocumentReportsNestedMarkers(t *testing.T) {
	entries, skipped := FromDocument("x {>> outer {>> inner <<} text <<}\ny {?? why ??}")
	if len(entries) != 1 || entries[0].Kind != fem.KindQuestion || entries[0].StartLine != 2 {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	if len(skipped) != 1 || skipped[0].Line != 1 {
		t.Fatalf("unexpected skipped: %#v", skipped)
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown([]Entry{
		{Kind: fem.KindComment, Text: "tighten", StartLine: 1, EndLine: 1, Snippet: "alpha"},
		{Kind: fem.KindDelete, Text: "drop", StartLine: 2, EndLine: 3, Snippet: "b\nc"},
	})
	want := "## Review Summary\n\n" +
		"### Line 1\n> \"alpha\"\n**Comment:** tighten\n\n" +
		"### Lines 2-3\n> \"b\n> c\"\n**Delete:** drop\n\n" +
		"---\n2 annotations total"
	if got != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", got, want)
	}
	if !strings.HasSuffix(Markdown([]Entry{{Kind: fem.KindKeep, StartLine: 1, EndLine: 1}}), "1 annotation total") {
		t.Fatalf("expected singular footer")
	}
}
