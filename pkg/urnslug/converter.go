// Package urnslug converts LexML URN fragment tokens into the dotted slug
// scheme used throughout the importer's output, and validates the
// conversion.
package urnslug

import (
	"regexp"
	"strings"
)

// typeMap translates a URN token's two/three-letter type code to its slug
// prefix. "cpt" (caput) has no numbered form: it always becomes "caput".
var typeMap = map[string]string{
	"art": "artigo",
	"par": "paragrafo",
	"inc": "inciso",
	"ali": "alinea",
	"ite": "item",
	"cpt": "caput",
	"prt": "parte",
	"liv": "livro",
	"tit": "titulo",
	"cap": "capitulo",
	"sec": "secao",
}

// tokenPattern splits a single URN part into its leading letters and
// trailing number, which may carry a hyphenated letter suffix (e.g. "121a",
// "121-a").
var tokenPattern = regexp.MustCompile(`^([a-zA-Z]+)(\d+[a-zA-Z]?(?:-[a-zA-Z])?)$`)

// validPrefixes are the slug prefixes Validate accepts for a non-leading
// token, mirroring the original ConversorURNSlug.validar_conversao list.
var validPrefixes = []string{"paragrafo-", "inciso-", "alinea-", "item-", "caput"}

// Result is the outcome of converting one URN fragment.
type Result struct {
	Slug    string
	Ok      bool
	Unknown []string // token type codes that did not match typeMap
}

// Convert turns a URN fragment (the part after "!", tokens joined by "_",
// e.g. "art121_par2_inc4") into a dotted slug, e.g.
// "artigo-121.paragrafo-2.inciso-4".
//
// Unknown type tokens pass through unchanged and are reported in
// Result.Unknown so callers can count conversion warnings (spec §4.1).
// A token with no number (other than "cpt") also passes through unchanged
// and makes Result.Ok false.
func Convert(fragment string) Result {
	fragment = strings.TrimPrefix(fragment, "!")
	if fragment == "" {
		return Result{}
	}

	parts := strings.Split(fragment, "_")
	slugParts := make([]string, 0, len(parts))
	var unknown []string
	malformed := false

	for _, part := range parts {
		match := tokenPattern.FindStringSubmatch(part)
		if match == nil {
			if strings.EqualFold(part, "cpt") {
				slugParts = append(slugParts, "caput")
			} else {
				slugParts = append(slugParts, part)
				malformed = true
			}
			continue
		}

		typeCode := strings.ToLower(match[1])
		number := strings.ToLower(match[2])

		slugType, known := typeMap[typeCode]
		if !known {
			unknown = append(unknown, typeCode)
			slugParts = append(slugParts, part)
			continue
		}

		if typeCode == "cpt" {
			slugParts = append(slugParts, "caput")
		} else {
			slugParts = append(slugParts, slugType+"-"+number)
		}
	}

	slug := strings.Join(slugParts, ".")
	ok := !malformed && len(slugParts) > 0 && strings.HasPrefix(slugParts[0], "artigo-")

	return Result{Slug: slug, Ok: ok, Unknown: unknown}
}

// FragmentOf extracts the "!"-delimited fragment from a full URN. Returns
// "" if the URN carries no fragment.
func FragmentOf(urn string) string {
	idx := strings.Index(urn, "!")
	if idx == -1 {
		return ""
	}
	return urn[idx+1:]
}

// Validate reports whether slug is structurally acceptable: it must start
// with "artigo-" or one of the permitted continuation prefixes.
func Validate(slug string) bool {
	if slug == "" {
		return false
	}
	if strings.HasPrefix(slug, "artigo-") || slug == "caput" {
		return true
	}
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(slug, prefix) {
			return true
		}
	}
	return false
}

// RoundTrip converts a URN and checks that the result equals wantSlug,
// after the normalizations Validate treats as equivalent (bare "caput" vs
// "<base>.caput" are not compared here; callers compare the literal slug).
func RoundTrip(urn, wantSlug string) bool {
	result := Convert(FragmentOf(urn))
	return result.Ok && result.Slug == wantSlug
}
