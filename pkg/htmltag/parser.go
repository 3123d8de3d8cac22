// Package htmltag implements the bold-span/prefix-regex HTML parser (spec
// §4.5): it walks <p>/<h3>/<h4> blocks of a normas.leg.br HTML document and
// classifies each one using hierarchy, article, paragraph, clause, and
// penalty prefix regexes, attaching bold-only blocks as epigraphs.
package htmltag

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

// Parse walks source and returns the top-level articles plus the hierarchy
// Structure accumulated from PARTE/LIVRO/TÍTULO/CAPÍTULO/SEÇÃO headers.
func Parse(source string) ([]*lawmodel.LawElement, *lawmodel.Structure) {
	source = correctEncoding(source)

	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, lawmodel.NewStructure()
	}

	blocks := collectBlocks(root)

	p := &parser{
		structure:     lawmodel.NewStructure(),
		path:          map[string]string{},
		hasParteGeral: strings.Contains(strings.ToLower(visibleText(root)), "parte geral"),
	}
	for _, b := range blocks {
		p.consume(b)
	}
	p.flushPendingHeader()

	return p.articles, p.structure
}

// correctEncoding undoes a common double-encoding artifact: UTF-8 bytes that
// were mistakenly re-encoded as if they were latin-1. The fix is attempted
// and only kept if it does not corrupt the text further (spec §4.5,
// S-DOUBLE-ENCODING-FIX): encode back to latin-1 bytes, then decode as
// UTF-8; if that round trip succeeds and contains no replacement runes, use
// it. It also normalizes ordinal glyphs: "Âº" -> "º", and a bare "o"
// glued right after a numeric article number -> "º".
func correctEncoding(source string) string {
	encoder := charmap.ISO8859_1.NewEncoder()
	if latin1, err := encoder.String(source); err == nil {
		if !strings.ContainsRune(latin1, '�') && looksUTF8(latin1) {
			source = latin1
		}
	}

	source = strings.ReplaceAll(source, "Âº", "º")
	source = strings.ReplaceAll(source, "Âª", "ª")
	source = bareOrdinalPattern.ReplaceAllString(source, "${1}º")
	return source
}

var bareOrdinalPattern = regexp.MustCompile(`(\bArt\.?\s*\d+)o\b`)

func looksUTF8(s string) bool {
	for _, r := range s {
		if r == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// block is one classifiable <p>/<h3>/<h4> unit.
type block struct {
	text string
	bold string
}

func collectBlocks(root *html.Node) []block {
	var blocks []block
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "h3", "h4":
				text := strings.TrimSpace(visibleText(n))
				if text != "" {
					blocks = append(blocks, block{text: text, bold: strings.TrimSpace(boldText(n))})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks
}

func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// boldText concatenates the text of every <b>/<strong> descendant.
func boldText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "b" || n.Data == "strong") {
			b.WriteString(visibleText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Classification regexes, applied in the priority order spec §4.5 lists.
var (
	hierarchyPattern   = regexp.MustCompile(`(?i)^(PARTE|LIVRO|T[ÍI]TULO|CAP[ÍI]TULO|SE[ÇC][ÃA]O|SUBSE[ÇC][ÃA]O|SUBT[ÍI]TULO)\s+([IVXLCDM]+(?:-[A-Z])?)\b\s*(.*)$`)
	articlePattern     = regexp.MustCompile(`^Art\.?\s*(\d+)\s*[ºª°o]?\s*(-[A-Z])?\.?\s*(.*)$`)
	paragraphPattern   = regexp.MustCompile(`^§\s*(\d+)\s*[ºª°]?\.?\s*(.*)$`)
	soleParagraphRe    = regexp.MustCompile(`(?i)^par[áa]grafo\s+[úu]nico\.?\s*(.*)$`)
	romanClausePattern = regexp.MustCompile(`^([IVXLCDM]+)\s*[-–—]\s*(.*)$`)
	alineaPattern      = regexp.MustCompile(`^([a-z])\)\s*(.*)$`)
	penaltyPattern     = regexp.MustCompile(`(?i)^pena\s*[-–—]\s*(.*)$`)
	trailingParenRun   = regexp.MustCompile(`(\([^()]*\)\s*)+$`)
)

var hierarchyKindByLabel = map[string]lawmodel.Kind{
	"PARTE":      lawmodel.KindPart,
	"LIVRO":      lawmodel.KindBook,
	"TÍTULO":     lawmodel.KindTitle,
	"TITULO":     lawmodel.KindTitle,
	"SUBTÍTULO":  lawmodel.KindSubtitle,
	"SUBTITULO":  lawmodel.KindSubtitle,
	"CAPÍTULO":   lawmodel.KindChapter,
	"CAPITULO":   lawmodel.KindChapter,
	"SEÇÃO":      lawmodel.KindSection,
	"SECAO":      lawmodel.KindSection,
	"SUBSEÇÃO":   lawmodel.KindSubsection,
	"SUBSECAO":   lawmodel.KindSubsection,
}

type classified struct {
	kind      lawmodel.Kind // "" for continuation/orphan/epigraph
	hierarchy bool
	number    string
	text      string
	epigraph  bool
}

// classify applies spec §4.5's classification tuple rules, in order.
func classify(b block) classified {
	text := b.text

	if m := hierarchyPattern.FindStringSubmatch(text); m != nil {
		kind, ok := hierarchyKindByLabel[strings.ToUpper(stripAccentsASCII(m[1]))]
		if !ok {
			kind = hierarchyKindByLabel[strings.ToUpper(m[1])]
		}
		return classified{kind: kind, hierarchy: true, number: m[2], text: strings.TrimSpace(m[3])}
	}

	stripped := strings.TrimSpace(trailingParenRun.ReplaceAllString(text, ""))
	if b.bold != "" && b.bold == stripped && !strings.HasPrefix(stripped, "Art") {
		return classified{epigraph: true, text: text}
	}

	if m := articlePattern.FindStringSubmatch(text); m != nil {
		number := m[1] + m[2]
		return classified{kind: lawmodel.KindArticle, number: number, text: strings.TrimSpace(m[3])}
	}

	if m := soleParagraphRe.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindParagraph, number: "unico", text: strings.TrimSpace(m[1])}
	}
	if m := paragraphPattern.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindParagraph, number: m[1], text: strings.TrimSpace(m[2])}
	}

	if m := romanClausePattern.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindRomanClause, number: m[1], text: strings.TrimSpace(m[2])}
	}

	if m := alineaPattern.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindLetteredClause, number: m[1], text: strings.TrimSpace(m[2])}
	}

	if m := penaltyPattern.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindPenalty, text: "Pena - " + strings.TrimSpace(m[1])}
	}

	firstRune := firstNonSpaceRune(text)
	if unicode.IsLower(firstRune) {
		return classified{text: text} // continuation
	}
	return classified{text: text} // orphan text; handled identically downstream
}

func firstNonSpaceRune(s string) rune {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

// stripAccentsASCII is a cheap best-effort fold used only to match the
// hierarchyKindByLabel table against text that may already have lost its
// accents through an earlier encoding mishap.
func stripAccentsASCII(s string) string {
	replacer := strings.NewReplacer(
		"Á", "A", "À", "A", "Â", "A", "Ã", "A",
		"É", "E", "Ê", "E",
		"Í", "I",
		"Ó", "O", "Ô", "O", "Õ", "O",
		"Ú", "U",
		"Ç", "C",
	)
	return replacer.Replace(s)
}

// parser holds the state machine driving block classification into the
// element tree (spec §4.5 "State machine consumes the block stream").
type parser struct {
	structure *lawmodel.Structure
	path      map[string]string

	hasParteGeral bool
	sawTitle      bool
	insertedPG    bool

	pendingHeader   *pendingHeading
	pendingEpigraph string
	pendingRubric   string

	articles []*lawmodel.LawElement

	currentArticle   *lawmodel.LawElement
	currentParagraph *lawmodel.LawElement
	currentClause    *lawmodel.LawElement
	currentAlinea    *lawmodel.LawElement
	lastTextual      *lawmodel.LawElement
}

type pendingHeading struct {
	level   lawmodel.Kind
	heading string
}

func (p *parser) consume(b block) {
	c := classify(b)

	// A pending structural header absorbs the very next block if that
	// block is plain descriptive text; anything else flushes it bare
	// first (spec §4.5 "pending structural header").
	if p.pendingHeader != nil && !c.hierarchy && !c.epigraph && c.kind == "" {
		pending := p.pendingHeader
		p.pendingHeader = nil
		p.openHeading(pending.level, pending.heading+" - "+c.text)
		return
	}

	switch {
	case c.hierarchy:
		p.handleHierarchy(c)
	case c.epigraph:
		p.flushPendingHeader()
		p.handleEpigraph(c)
	case c.kind == lawmodel.KindArticle:
		p.flushPendingHeader()
		p.startArticle(c)
	case c.kind == lawmodel.KindParagraph:
		p.flushPendingHeader()
		p.startParagraph(c)
	case c.kind == lawmodel.KindRomanClause:
		p.flushPendingHeader()
		p.startRomanClause(c)
	case c.kind == lawmodel.KindLetteredClause:
		p.flushPendingHeader()
		p.startAlinea(c)
	case c.kind == lawmodel.KindPenalty:
		p.flushPendingHeader()
		p.appendPenalty(c.text)
	default:
		p.flushPendingHeader()
		p.handleBodyText(c.text)
	}
}

// handleHierarchy implements the pending-header concatenation rule: a
// hierarchy block with trailing title text on the same line flushes
// immediately; one with no trailing text stays pending until the next
// block, which either supplies the title (descriptive text, joined with
// " - ") or is itself structural/article content (flushed bare).
func (p *parser) handleHierarchy(c classified) {
	p.flushPendingHeader()

	if c.kind == lawmodel.KindTitle && !p.sawTitle {
		p.maybeInsertParteGeral()
	}
	if hierarchyTracksTitle(c.kind) {
		p.sawTitle = true
	}

	heading := headingLabel(c.kind, c.number)
	if c.text != "" {
		heading = heading + " - " + c.text
		p.openHeading(c.kind, heading)
		return
	}
	p.pendingHeader = &pendingHeading{level: c.kind, heading: heading}
}

func hierarchyTracksTitle(kind lawmodel.Kind) bool {
	return kind == lawmodel.KindTitle
}

func (p *parser) maybeInsertParteGeral() {
	if p.insertedPG || !p.hasParteGeral {
		return
	}
	p.insertedPG = true
	p.openHeading(lawmodel.KindPart, "Parte geral")
}

func headingLabel(kind lawmodel.Kind, number string) string {
	label := map[lawmodel.Kind]string{
		lawmodel.KindPart: "PARTE", lawmodel.KindBook: "LIVRO",
		lawmodel.KindTitle: "TÍTULO", lawmodel.KindSubtitle: "SUBTÍTULO",
		lawmodel.KindChapter: "CAPÍTULO", lawmodel.KindSection: "SEÇÃO",
		lawmodel.KindSubsection: "SUBSEÇÃO",
	}[kind]
	return label + " " + number
}

// flushPendingHeader closes out a pending hierarchy header with whatever
// heading text it accumulated, or bare if the next block was not
// descriptive text.
func (p *parser) flushPendingHeader() {
	if p.pendingHeader == nil {
		return
	}
	pending := p.pendingHeader
	p.pendingHeader = nil
	p.openHeading(pending.level, pending.heading)
}

func (p *parser) openHeading(level lawmodel.Kind, heading string) {
	p.structure.Append(level, heading)
	p.setPathLevel(level, heading)
}

func (p *parser) setPathLevel(level lawmodel.Kind, heading string) {
	idx := -1
	for i, l := range lawmodel.HierarchyLevels {
		if l == level {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i, l := range lawmodel.HierarchyLevels {
		if i == idx {
			p.path[string(l)] = heading
		} else if i > idx {
			delete(p.path, string(l))
		}
	}
}

// handleEpigraph implements the pending-epigraph rule: outside an article
// it waits for the next article to start; inside an article it becomes a
// rubric bound to the next paragraph/clause.
func (p *parser) handleEpigraph(c classified) {
	if p.currentArticle == nil {
		p.pendingEpigraph = c.text
		return
	}
	p.pendingRubric = c.text
}

func (p *parser) startArticle(c classified) {
	article := lawmodel.NewElement(lawmodel.KindArticle)
	article.Number = c.number
	article.Path = clonePath(p.path)

	if p.pendingEpigraph != "" {
		article.Epigraph = p.pendingEpigraph
		p.pendingEpigraph = ""
	}

	p.articles = append(p.articles, article)
	p.currentArticle = article
	p.currentParagraph = nil
	p.currentClause = nil
	p.currentAlinea = nil
	p.lastTextual = nil
	// A rubric queued inside the previous article that was never flushed
	// onto a paragraph/clause does not carry across an article boundary
	// (spec §9, "discarding if an article boundary intervenes").
	p.pendingRubric = ""

	if c.text != "" {
		p.handleBodyText(c.text)
	}
}

func (p *parser) startParagraph(c classified) {
	if p.currentArticle == nil {
		return
	}
	node := lawmodel.NewElement(lawmodel.KindParagraph)
	node.Number = c.number
	if p.pendingRubric != "" {
		node.Epigraph = p.pendingRubric
		p.pendingRubric = ""
	}
	p.currentArticle.Children = append(p.currentArticle.Children, node)
	p.currentParagraph = node
	p.currentClause = nil
	p.currentAlinea = nil
	p.lastTextual = node
	if c.text != "" {
		node.Text = c.text
	}
}

func (p *parser) startRomanClause(c classified) {
	if p.currentArticle == nil {
		return
	}
	parent := p.containerForClause()
	node := lawmodel.NewElement(lawmodel.KindRomanClause)
	node.Number = c.number
	if p.pendingRubric != "" {
		node.Epigraph = p.pendingRubric
		p.pendingRubric = ""
	}
	parent.Children = append(parent.Children, node)
	p.currentClause = node
	p.currentAlinea = nil
	p.lastTextual = node
	if c.text != "" {
		node.Text = c.text
	}
}

func (p *parser) containerForClause() *lawmodel.LawElement {
	if p.currentParagraph != nil {
		return p.currentParagraph
	}
	return p.currentArticle
}

func (p *parser) startAlinea(c classified) {
	if p.currentArticle == nil {
		return
	}
	parent := p.currentClause
	if parent == nil {
		parent = p.containerForClause()
	}
	node := lawmodel.NewElement(lawmodel.KindLetteredClause)
	node.Number = c.number
	parent.Children = append(parent.Children, node)
	p.currentAlinea = node
	p.lastTextual = node
	if c.text != "" {
		node.Text = c.text
	}
}

func (p *parser) appendPenalty(text string) {
	if p.currentArticle == nil {
		p.structure.AddOrphan(text)
		return
	}
	parent := p.currentParagraph
	if parent == nil {
		parent = p.currentArticle
	}
	node := lawmodel.NewElement(lawmodel.KindPenalty)
	node.Text = text
	parent.Children = append(parent.Children, node)
	p.lastTextual = node
}

// handleBodyText appends continuation/orphan text to the deepest open
// container, creating the article's caput lazily if nothing is open yet.
func (p *parser) handleBodyText(text string) {
	target := p.deepestContainer()
	if target == nil {
		p.structure.AddOrphan(text)
		return
	}
	if target.Text == "" {
		target.Text = text
	} else {
		target.Text = target.Text + " " + text
	}
	p.lastTextual = target
}

func (p *parser) deepestContainer() *lawmodel.LawElement {
	switch {
	case p.currentAlinea != nil:
		return p.currentAlinea
	case p.currentClause != nil:
		return p.currentClause
	case p.currentParagraph != nil:
		return p.currentParagraph
	case p.currentArticle != nil:
		return p.caputOf(p.currentArticle)
	default:
		return nil
	}
}

func (p *parser) caputOf(article *lawmodel.LawElement) *lawmodel.LawElement {
	for _, child := range article.Children {
		if child.Kind == lawmodel.KindCaput {
			return child
		}
	}
	caput := lawmodel.NewElement(lawmodel.KindCaput)
	article.Children = append(article.Children, caput)
	return caput
}

func clonePath(path map[string]string) map[string]string {
	out := make(map[string]string, len(path))
	for k, v := range path {
		out[k] = v
	}
	return out
}
