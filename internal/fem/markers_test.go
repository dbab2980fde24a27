package fem

import (
	"strings"
	"testing"
)

func TestMarkersAndPromptsCoverEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		if _, ok := Markers[k]; !ok {
			t.Fatalf("Markers missing kind %q", k)
		}
		if _, ok := Prompts[k]; !ok {
			t.Fatalf("Prompts missing kind %q", k)
		}
	}
	if len(Markers) != len(Kinds()) || len(Prompts) != len(Kinds()) {
		t.Fatalf("tables out of sync: markers=%d prompts=%d kinds=%d", len(Markers), len(Prompts), len(Kinds()))
	}
}

func TestDelimitersDoNotOverlap(t *testing.T) {
	var tokens []string
	for _, k := range Kinds() {
		tokens = append(tokens, Markers[k].Open, Markers[k].Close)
	}
	for i, a := range tokens {
		for j, b := range tokens {
			if i != j && strings.Contains(a, b) {
				t.Fatalf("delimiter %q contains %q", a, b)
			}
		}
	}
}

func TestKindsReturnsCopy(t *testing.T) {
	got := Kinds()
	got[0] = "mutated"
	if Kinds()[0] != KindComment {
		t.Fatalf("expected processing order to be immutable")
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
		ok   bool
	}{
		{"comment", KindComment, true},
		{"change", KindChange, true},
		{"suggest", KindChange, true},
		{"invalid", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeKind(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeKind(%q) = %q,%v want %q,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
	if ValidKind(KindSuggest) {
		t.Fatalf("suggest must not have its own delimiters")
	}
}
