// Package annotation strips trailing editorial parenthetical clauses
// ("(Incluído pela Lei nº ...)", "(Revogado pela Lei nº ...)") from the
// body text of a law element, and classifies what the stripped clauses
// say about the element's vigency.
package annotation

import (
	"regexp"
	"strings"
)

// legislativeActionAlternation is the set of legislative-action markers a
// trailing parenthetical must contain to be treated as an editorial
// annotation rather than ordinary body text. It tolerates the presence or
// absence of diacritics.
const legislativeActionAlternation = `(?:inclu[íi]d|revogad|acrescid|alterad|vetad|suprimi|renumerad)[oa]?[^)]*pel[ao]|reda[çc][ãa]o\s+dad|vide|vig[êe]ncia`

// trailingAnnotationRun matches one or more consecutive parenthesized
// clauses at the very end of the text, anchored so it only matches a
// *trailing* run (spec §4.2).
var trailingAnnotationRun = regexp.MustCompile(
	`(?i)(\s*\([^)]*(?:` + legislativeActionAlternation + `)[^)]*\))+$`,
)

// individualAnnotation decomposes a matched trailing run into its separate
// parenthesized clauses.
var individualAnnotation = regexp.MustCompile(`\([^)]+\)`)

// emptyAfterStrip matches a body that, once the annotation run is removed,
// contains nothing but whitespace and stray punctuation.
var emptyAfterStrip = regexp.MustCompile(`^[\s.,;:\-]*$`)

// Split separates a trailing run of editorial annotations from body text.
//
// Returns the clean text (annotations removed), the original text
// (unchanged), and the list of individual annotation clauses found. When
// text has no trailing annotation run, clean and original are identical
// and annotations is nil.
func Split(text string) (clean, original string, annotations []string) {
	if text == "" {
		return "", "", nil
	}

	original = text
	loc := trailingAnnotationRun.FindStringIndex(text)
	if loc == nil {
		return text, text, nil
	}

	clean = strings.TrimSpace(text[:loc[0]])
	block := text[loc[0]:]
	annotations = individualAnnotation.FindAllString(block, -1)
	for i, a := range annotations {
		annotations[i] = strings.TrimSpace(a)
	}

	return clean, original, annotations
}

// Status is the vigency state inferred from a body that reduced to nothing
// after Split, based on the words present in its annotations (spec §4.2).
type Status int

const (
	// StatusValid means the annotations do not establish revocation or an
	// unreversed veto; the element stands despite the empty body.
	StatusValid Status = iota
	StatusRevoked
	StatusVetoed
)

// InferStatus classifies an empty-after-stripping body from its
// annotations:
//   - contains "revogad"                       → revoked
//   - contains "vetad" without "mantid"         → vetoed
//   - contains both "vetad" and "mantid"        → valid (veto overridden)
func InferStatus(annotations []string) Status {
	joined := strings.ToLower(strings.Join(annotations, " "))

	hasRevoked := strings.Contains(joined, "revogad")
	hasVetoed := strings.Contains(joined, "vetad")
	hasUpheld := strings.Contains(joined, "mantid")

	switch {
	case hasRevoked:
		return StatusRevoked
	case hasVetoed && !hasUpheld:
		return StatusVetoed
	default:
		return StatusValid
	}
}

// IsEmptyBody reports whether clean (the output of Split) is empty once
// stray leading/trailing punctuation is discarded, the condition that
// triggers InferStatus downstream in the emitter (spec §4.2).
func IsEmptyBody(clean string) bool {
	return emptyAfterStrip.MatchString(strings.TrimSpace(clean))
}
