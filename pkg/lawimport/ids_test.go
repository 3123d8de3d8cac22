package lawimport

import "testing"

func TestDeriveLeiID(t *testing.T) {
	testCases := []struct {
		urn  string
		want string
	}{
		{"urn:lex:br:federal:decreto.lei:1940-12-07;2848", "decreto-lei-2848"},
		{"urn:lex:br:federal:lei:2002-01-10;10406", "lei-10406"},
	}
	for _, tc := range testCases {
		if got := DeriveLeiID(tc.urn); got != tc.want {
			t.Errorf("DeriveLeiID(%q) = %q, want %q", tc.urn, got, tc.want)
		}
	}
}

func TestDeriveNumero(t *testing.T) {
	if got := DeriveNumero("urn:lex:br:federal:decreto.lei:1940-12-07;2848"); got != "2848" {
		t.Errorf("DeriveNumero = %q, want 2848", got)
	}
}
