package lawimport

import (
	"regexp"
	"strings"
)

// urnIDPattern pulls the norm type and bare number out of a LexML URN, e.g.
// "urn:lex:br:federal:decreto.lei:1940-12-07;2848" -> ("decreto.lei", "2848").
var urnIDPattern = regexp.MustCompile(`^urn:lex:br:federal:([a-z.]+):[^;]+;(\d+)$`)

// DeriveLeiID builds the lei.id output field from a URN, e.g.
// "decreto.lei:...;2848" -> "decreto-lei-2848" (S-LEI-ID, grounded on
// GeradorOutput._gerar_id_lei in original_source/).
func DeriveLeiID(urn string) string {
	match := urnIDPattern.FindStringSubmatch(urn)
	if match == nil {
		return sanitizeID(urn)
	}
	tipo := strings.ReplaceAll(match[1], ".", "-")
	return tipo + "-" + match[2]
}

// DeriveNumero extracts the bare numeric law number from a URN (S-LEI-NUMERO,
// grounded on GeradorOutput._extrair_numero_lei in original_source/).
func DeriveNumero(urn string) string {
	match := urnIDPattern.FindStringSubmatch(urn)
	if match == nil {
		return ""
	}
	return match[2]
}

func sanitizeID(urn string) string {
	replacer := strings.NewReplacer(":", "-", ";", "-", ".", "-")
	return strings.Trim(replacer.Replace(urn), "-")
}
