// Package lawjson walks the structured JSON ("hasPart" trees) returned by
// the normas.leg.br JSON endpoint into the intermediate LawElement tree
// (spec §4.4).
package lawjson

import (
	"regexp"
	"strings"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

// Parse descends data's "hasPart" tree and returns the top-level articles
// plus the hierarchy Structure accumulated along the way.
func Parse(data map[string]any) ([]*lawmodel.LawElement, *lawmodel.Structure) {
	parser := &parser{structure: lawmodel.NewStructure()}
	parser.walk(data["hasPart"], map[string]string{})
	return parser.articles, parser.structure
}

type parser struct {
	articles  []*lawmodel.LawElement
	structure *lawmodel.Structure
}

// walk recursively descends a hasPart value, which may be a single object,
// a list of objects, or absent.
func (p *parser) walk(node any, path map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		p.visit(v, path)
	case []any:
		for _, item := range v {
			p.walk(item, path)
		}
	}
}

// visit processes one hasPart element: hierarchy elements extend path and
// the structure lists; article elements are turned into a LawElement and
// their children walked separately (only into body content, not back
// through the generic hasPart walk, per spec §4.4).
func (p *parser) visit(elem map[string]any, path map[string]string) {
	work := latestWorkExample(elem)
	name := stringOr(work, "name", stringField(elem, "name"))
	text := stringField(work, "text")
	urn := stringField(elem, "legislationIdentifier")

	kind := classify(urn, name)

	nextPath := path
	if level, isHierarchy := hierarchyLevel(kind); isHierarchy {
		heading := name
		if text != "" {
			heading = name + " - " + text
		}
		nextPath = clonePath(path)
		nextPath[string(level)] = heading
		p.structure.Append(level, heading)
	}

	if kind == lawmodel.KindArticle {
		p.articles = append(p.articles, p.buildArticle(elem, work, name, urn, nextPath))
		return
	}

	for _, child := range childList(elem) {
		p.walk(child, nextPath)
	}
}

// buildArticle constructs the article LawElement and recursively converts
// its hasPart children (caput, paragraphs, clauses) without re-running the
// hierarchy-element logic, since articles never nest further hierarchy
// levels.
func (p *parser) buildArticle(elem, work map[string]any, name, urn string, path map[string]string) *lawmodel.LawElement {
	number := extractArticleNumber(name)
	legalForce := stringField(work, "legislationLegalForce")

	article := &lawmodel.LawElement{
		Kind:    lawmodel.KindArticle,
		Number:  number,
		URN:     urn,
		InForce: legalForce != "NotInForce",
		Path:    path,
	}

	for _, child := range childList(elem) {
		if childElem, ok := child.(map[string]any); ok {
			if built := p.buildArticleChild(childElem); built != nil {
				article.Children = append(article.Children, built)
			}
		}
	}

	return article
}

// buildArticleChild converts one body element (caput, paragraph, roman
// clause, lettered clause, item) and recurses into its own children.
func (p *parser) buildArticleChild(elem map[string]any) *lawmodel.LawElement {
	work := latestWorkExample(elem)
	name := stringOr(work, "name", stringField(elem, "name"))
	text := stringField(work, "text")
	urn := stringField(elem, "legislationIdentifier")

	kind := classify(urn, name)
	if !isBodyKind(kind) {
		return nil
	}

	legalForce := stringField(work, "legislationLegalForce")

	element := &lawmodel.LawElement{
		Kind:    kind,
		Number:  extractChildNumber(kind, name),
		Text:    text,
		URN:     urn,
		InForce: legalForce != "NotInForce",
	}

	for _, child := range childList(elem) {
		if childElem, ok := child.(map[string]any); ok {
			if built := p.buildArticleChild(childElem); built != nil {
				element.Children = append(element.Children, built)
			}
		}
	}

	return element
}

func isBodyKind(kind lawmodel.Kind) bool {
	switch kind {
	case lawmodel.KindCaput, lawmodel.KindParagraph, lawmodel.KindRomanClause,
		lawmodel.KindLetteredClause, lawmodel.KindItem:
		return true
	default:
		return false
	}
}

func hierarchyLevel(kind lawmodel.Kind) (lawmodel.Kind, bool) {
	switch kind {
	case lawmodel.KindPart, lawmodel.KindBook, lawmodel.KindTitle,
		lawmodel.KindSubtitle, lawmodel.KindChapter, lawmodel.KindSection, lawmodel.KindSubsection:
		return kind, true
	default:
		return "", false
	}
}

// classify identifies an element's kind from its URN fragment prefix,
// falling back to human-readable name cues (spec §4.4).
func classify(urn, name string) lawmodel.Kind {
	urnLower := strings.ToLower(urn)
	// Only the element's own (last) fragment token decides its kind, so an
	// ancestor token such as "_par1" in "..._par1_inc1" is not matched.
	if i := strings.LastIndexAny(urnLower, "_!"); i >= 0 {
		urnLower = urnLower[i:]
	}
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(urnLower, "_cpt") || strings.Contains(nameLower, "caput"):
		return lawmodel.KindCaput
	case strings.Contains(urnLower, "_par") || strings.Contains(nameLower, "parágrafo") || strings.Contains(name, "§"):
		return lawmodel.KindParagraph
	case strings.Contains(urnLower, "_inc") || romanClausePrefix.MatchString(name):
		return lawmodel.KindRomanClause
	case strings.Contains(urnLower, "_ali") || letterClausePrefix.MatchString(name):
		return lawmodel.KindLetteredClause
	case strings.Contains(urnLower, "_ite"):
		return lawmodel.KindItem
	case strings.Contains(urnLower, "!art") || strings.HasPrefix(nameLower, "art"):
		return lawmodel.KindArticle
	case strings.Contains(urnLower, "!prt") || strings.Contains(nameLower, "parte"):
		return lawmodel.KindPart
	case strings.Contains(urnLower, "!liv") || strings.Contains(nameLower, "livro"):
		return lawmodel.KindBook
	case strings.Contains(urnLower, "!tit") || strings.Contains(nameLower, "título"):
		return lawmodel.KindTitle
	case strings.Contains(urnLower, "!cap") || strings.Contains(nameLower, "capítulo"):
		return lawmodel.KindChapter
	case strings.Contains(urnLower, "!sec") || strings.Contains(nameLower, "seção"):
		return lawmodel.KindSection
	default:
		return ""
	}
}

var (
	romanClausePrefix  = regexp.MustCompile(`^[IVX]+\s*[-–]`)
	letterClausePrefix = regexp.MustCompile(`^[a-z]\s*\)`)
	articleNumberRe    = regexp.MustCompile(`(\d+[º°]?(?:-?[A-Za-z])?)`)
	paragraphNumberRe  = regexp.MustCompile(`(?i)§\s*(\d+|único)`)
	romanNumberRe      = regexp.MustCompile(`^([IVX]+)`)
	letterNumberRe     = regexp.MustCompile(`(?i)^([a-z])`)
)

func extractArticleNumber(name string) string {
	match := articleNumberRe.FindStringSubmatch(name)
	if match == nil {
		return "0"
	}
	number := strings.ReplaceAll(match[1], "º", "")
	number = strings.ReplaceAll(number, "°", "")
	return number
}

func extractChildNumber(kind lawmodel.Kind, name string) string {
	switch kind {
	case lawmodel.KindParagraph:
		match := paragraphNumberRe.FindStringSubmatch(name)
		if match == nil {
			return "unico"
		}
		if strings.EqualFold(match[1], "único") {
			return "unico"
		}
		return match[1]
	case lawmodel.KindRomanClause:
		match := romanNumberRe.FindStringSubmatch(name)
		if match == nil {
			return ""
		}
		return match[1]
	case lawmodel.KindLetteredClause:
		match := letterNumberRe.FindStringSubmatch(name)
		if match == nil {
			return ""
		}
		return strings.ToLower(match[1])
	default:
		return ""
	}
}

// latestWorkExample returns elem's "workExample" as a map, picking the
// last element when it is a list (the most recent version, spec §4.4).
func latestWorkExample(elem map[string]any) map[string]any {
	switch v := elem["workExample"].(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) == 0 {
			return nil
		}
		if m, ok := v[len(v)-1].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// childList normalizes hasPart to a slice, whether it was a single object,
// a list, or absent.
func childList(elem map[string]any) []any {
	switch v := elem["hasPart"].(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	default:
		return nil
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringOr(m map[string]any, key, fallback string) string {
	if v := stringField(m, key); v != "" {
		return v
	}
	return fallback
}

func clonePath(path map[string]string) map[string]string {
	out := make(map[string]string, len(path)+1)
	for k, v := range path {
		out[k] = v
	}
	return out
}
