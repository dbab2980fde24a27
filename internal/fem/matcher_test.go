package fem

import "testing"

func TestMatchTrimsPayloadAndReportsPositions(t *testing.T) {
	line := "a {>>   spaced out   <<} b {>>x<<}"
	got := Match(line, KindComment)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Text != "spaced out" || got[1].Text != "x" {
		t.Fatalf("unexpected payloads: %q %q", got[0].Text, got[1].Text)
	}
	if line[got[0].Start:got[0].End] != got[0].Full {
		t.Fatalf("positions do not address full match")
	}
	if got[0].Full != "{>>   spaced out   <<}" {
		t.Fatalf("unexpected full match: %q", got[0].Full)
	}
}

func TestMatchIsNonGreedy(t *testing.T) {
	got := Match("{-- one --} middle {-- two --}", KindDelete)
	if len(got) != 2 || got[0].Text != "one" || got[1].Text != "two" {
		t.Fatalf("expected two short matches, got %#v", got)
	}
}

func TestMatchVetoesAnyOpeningDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind Kind
	}{
		{"own kind", "{>> outer {>> inner <<}", KindComment},
		{"other kind", "{?? what about {== this ??}", KindQuestion},
		{"change inside delete", "{-- drop {++ add --}", KindDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.line, tt.kind); len(got) != 0 {
				t.Fatalf("expected veto, got %#v", got)
			}
		})
	}
}

func TestMatchEmptyPayload(t *testing.T) {
	got := Match("{!!!!}", KindExpand)
	if len(got) != 1 || got[0].Text != "" {
		t.Fatalf("expected one empty match, got %#v", got)
	}
}

func TestMatchUnknownKind(t *testing.T) {
	if got := Match("{>> x <<}", KindSuggest); got != nil {
		t.Fatalf("expected nil for kind without delimiters, got %#v", got)
	}
}

func TestMatchTrimsUnicodeSpaces(t *testing.T) {
	line := "x {>>\u00a0a\u00a0<<} {==\u2003b c\u3000==}"
	cases := []struct {
		kind Kind
		want Occurrence
	}{
		{kind: KindComment, want: Occurrence{Full: "{>>\u00a0a\u00a0<<}", Text: "a"}},
		{kind: KindKeep, want: Occurrence{Full: "{==\u2003b c\u3000==}", Text: "b c"}},
	}
	for _, tc := range cases {
		got := Match(line, tc.kind)
		if len(got) != 1 || got[0].Text != tc.want.Text || got[0].Full != tc.want.Full {
			t.Fatalf("%s: unexpected matches %#v", tc.kind, got)
		}
	}

	_, clean, _ := Parse(line)
	if clean != "x  " {
		t.Fatalf("unexpected clean line: %q", clean)
	}
}
