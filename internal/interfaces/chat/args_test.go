package chat

import "testing"

func TestArgs_NextAndRest(t *testing.T) {
	t.Parallel()

	a := newArgs(`  "Night Owls" <@!123>   555  Rin X Captain `)

	want := []string{"Night Owls", "<@!123>", "555"}
	for i, expected := range want {
		got, ok := a.Next()
		if !ok || got != expected {
			t.Fatalf("token %d: got=%q ok=%v want=%q", i, got, ok, expected)
		}
	}
	if rest := a.Rest(); rest != "Rin X Captain" {
		t.Fatalf("unexpected rest: %q", rest)
	}
	if _, ok := a.Next(); ok {
		t.Fatalf("expected no tokens after rest")
	}
	if !a.Empty() {
		t.Fatalf("expected empty args")
	}
}

func TestArgs_RestUnquotesWholeTail(t *testing.T) {
	t.Parallel()

	if got := newArgs(`"Alpha Team"`).Rest(); got != "Alpha Team" {
		t.Fatalf("unexpected rest: %q", got)
	}
	if got := newArgs(`"a" and "b"`).Rest(); got != `"a" and "b"` {
		t.Fatalf("partial quotes must be kept: %q", got)
	}
}

func TestArgs_UnterminatedQuoteIsPlainToken(t *testing.T) {
	t.Parallel()

	got, ok := newArgs(`"Alpha team`).Next()
	if !ok || got != `"Alpha` {
		t.Fatalf("unexpected token: %q", got)
	}
}

func TestParseMention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{in: "<@123>", wantID: "123", wantOK: true},
		{in: "<@!456>", wantID: "456", wantOK: true},
		{in: "789", wantID: "789", wantOK: true},
		{in: "<@&999>", wantOK: false},
		{in: "rin", wantOK: false},
		{in: "<@>", wantOK: false},
	}
	for _, tc := range tests {
		id, ok := parseMention(tc.in)
		if ok != tc.wantOK || id != tc.wantID {
			t.Fatalf("parseMention(%q): got=(%q,%v) want=(%q,%v)", tc.in, id, ok, tc.wantID, tc.wantOK)
		}
	}
}
