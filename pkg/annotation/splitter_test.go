package annotation

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		wantClean   string
		wantAnnos   []string
	}{
		{
			name:      "no annotation",
			text:      "Matar alguém.",
			wantClean: "Matar alguém.",
			wantAnnos: nil,
		},
		{
			name:      "single incluido annotation",
			text:      "Texto do dispositivo. (Incluído pela Lei nº 13.104, de 2015)",
			wantClean: "Texto do dispositivo.",
			wantAnnos: []string{"(Incluído pela Lei nº 13.104, de 2015)"},
		},
		{
			name:      "revogado annotation",
			text:      ". (Revogado pela Lei nº 7.209, de 1984)",
			wantClean: ".",
			wantAnnos: []string{"(Revogado pela Lei nº 7.209, de 1984)"},
		},
		{
			name:      "vide annotation",
			text:      "Pena - reclusão. (Vide Lei nº 7.960, de 1989)",
			wantClean: "Pena - reclusão.",
			wantAnnos: []string{"(Vide Lei nº 7.960, de 1989)"},
		},
		{
			name:      "multiple trailing annotations",
			text:      "Texto. (Incluído pela Lei nº 1) (Vide Lei nº 2)",
			wantClean: "Texto.",
			wantAnnos: []string{"(Incluído pela Lei nº 1)", "(Vide Lei nº 2)"},
		},
		{
			name:      "parenthetical that is not an annotation stays in body",
			text:      "Considera-se isento (nos termos do artigo anterior).",
			wantClean: "Considera-se isento (nos termos do artigo anterior).",
			wantAnnos: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clean, original, annos := Split(tc.text)
			if clean != tc.wantClean {
				t.Errorf("clean = %q, want %q", clean, tc.wantClean)
			}
			if original != tc.text {
				t.Errorf("original = %q, want %q", original, tc.text)
			}
			if !reflect.DeepEqual(annos, tc.wantAnnos) {
				t.Errorf("annotations = %v, want %v", annos, tc.wantAnnos)
			}
		})
	}
}

func TestInferStatus(t *testing.T) {
	testCases := []struct {
		name string
		anno []string
		want Status
	}{
		{"revoked", []string{"(Revogado pela Lei nº 7.209, de 1984)"}, StatusRevoked},
		{"vetoed", []string{"(Vetado na Lei nº 12.015, de 2009)"}, StatusVetoed},
		{"vetoed then upheld", []string{"(Vetado e mantido pelo Congresso)"}, StatusValid},
		{"added and revoked", []string{"(Acrescido e revogado pela Lei nº 1)"}, StatusRevoked},
		{"neither", []string{"(Vide Lei nº 1)"}, StatusValid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferStatus(tc.anno); got != tc.want {
				t.Errorf("InferStatus(%v) = %v, want %v", tc.anno, got, tc.want)
			}
		})
	}
}

func TestIsEmptyBody(t *testing.T) {
	testCases := []struct {
		clean string
		want  bool
	}{
		{".", true},
		{"", true},
		{"   ", true},
		{"- ;:,", true},
		{"Matar alguém.", false},
	}

	for _, tc := range testCases {
		if got := IsEmptyBody(tc.clean); got != tc.want {
			t.Errorf("IsEmptyBody(%q) = %v, want %v", tc.clean, got, tc.want)
		}
	}
}
