package urnslug

import "testing"

func TestConvert(t *testing.T) {
	testCases := []struct {
		name     string
		fragment string
		wantSlug string
		wantOk   bool
	}{
		{
			name:     "article only",
			fragment: "art121",
			wantSlug: "artigo-121",
			wantOk:   true,
		},
		{
			name:     "article, paragraph, inciso",
			fragment: "art121_par2_inc4",
			wantSlug: "artigo-121.paragrafo-2.inciso-4",
			wantOk:   true,
		},
		{
			name:     "caput token",
			fragment: "art121_cpt",
			wantSlug: "artigo-121.caput",
			wantOk:   true,
		},
		{
			name:     "hyphen-letter suffix preserved",
			fragment: "art121a",
			wantSlug: "artigo-121a",
			wantOk:   true,
		},
		{
			name:     "leading bang stripped",
			fragment: "!art5",
			wantSlug: "artigo-5",
			wantOk:   true,
		},
		{
			name:     "empty fragment",
			fragment: "",
			wantSlug: "",
			wantOk:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Convert(tc.fragment)
			if got.Slug != tc.wantSlug || got.Ok != tc.wantOk {
				t.Errorf("Convert(%q) = (%q, %v), want (%q, %v)", tc.fragment, got.Slug, got.Ok, tc.wantSlug, tc.wantOk)
			}
		})
	}
}

func TestConvertUnknownType(t *testing.T) {
	got := Convert("xyz9")
	if len(got.Unknown) != 1 || got.Unknown[0] != "xyz" {
		t.Errorf("Convert(%q).Unknown = %v, want [xyz]", "xyz9", got.Unknown)
	}
	if got.Ok {
		t.Errorf("Convert(%q).Ok = true, want false for unknown leading token", "xyz9")
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		slug string
		want bool
	}{
		{"artigo-121", true},
		{"artigo-121.paragrafo-2", true},
		{"caput", true},
		{"paragrafo-2.inciso-4", true},
		{"inciso-4", true},
		{"alinea-a", true},
		{"item-1", true},
		{"", false},
		{"bogus-1", false},
	}

	for _, tc := range testCases {
		if got := Validate(tc.slug); got != tc.want {
			t.Errorf("Validate(%q) = %v, want %v", tc.slug, got, tc.want)
		}
	}
}

func TestFragmentOf(t *testing.T) {
	urn := "urn:lex:br:federal:decreto.lei:1940-12-07;2848!art121_par2_inc4"
	if got := FragmentOf(urn); got != "art121_par2_inc4" {
		t.Errorf("FragmentOf(%q) = %q, want %q", urn, got, "art121_par2_inc4")
	}
	if got := FragmentOf("urn:lex:br:federal:lei:2002;10406"); got != "" {
		t.Errorf("FragmentOf without fragment = %q, want empty", got)
	}
}

func TestRoundTrip(t *testing.T) {
	urn := "urn:lex:br:federal:decreto.lei:1940-12-07;2848!art121_par2_inc4"
	if !RoundTrip(urn, "artigo-121.paragrafo-2.inciso-4") {
		t.Errorf("RoundTrip(%q) = false, want true", urn)
	}
	if RoundTrip(urn, "artigo-121.paragrafo-9") {
		t.Errorf("RoundTrip with wrong slug = true, want false")
	}
}
