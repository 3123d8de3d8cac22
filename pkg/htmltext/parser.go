// Package htmltext implements the line-block HTML parser used when markup
// is too sparse for bold-span detection to work (spec §4.6), which is the
// common case for Planalto's own HTML publications.
package htmltext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

const strikeSentinel = "\x00STRIKE\x00"

// Parse walks source and returns the top-level articles plus the hierarchy
// Structure, using the text-block heuristics of spec §4.6.
func Parse(source string) ([]*lawmodel.LawElement, *lawmodel.Structure) {
	blocks := blockify(source)
	blocks = dropTrailingIndice(blocks)
	for i := range blocks {
		blocks[i].text = correctMojibake(blocks[i].text)
	}
	blocks = expandMultiLabelBlocks(blocks)

	p := &parser{structure: lawmodel.NewStructure(), path: map[string]string{}}
	for _, b := range blocks {
		p.consume(b)
	}
	p.flushPendingHeader()

	return p.articles, p.structure
}

type block struct {
	text     string
	revoked  bool
	centered bool
}

// blockify implements spec §4.6 step 1: mark strike-through regions with a
// sentinel before stripping tags, then re-block on <p>/<div>/<center>/<h*>;
// if the source has no such block tags, fall back to splitting on blank
// lines.
func blockify(source string) []block {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return splitOnBlankLines(source)
	}

	markStrikethrough(root)

	var blocks []block
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "center", "h1", "h2", "h3", "h4", "h5", "h6":
				found = true
				raw := visibleText(n)
				revoked := strings.Contains(raw, strikeSentinel)
				text := strings.TrimSpace(strings.ReplaceAll(raw, strikeSentinel, ""))
				if text != "" {
					blocks = append(blocks, block{
						text:     text,
						revoked:  revoked,
						centered: n.Data == "center" || isCenterStyled(n) || isHeading(n.Data),
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if !found {
		return splitOnBlankLines(strings.ReplaceAll(visibleText(root), strikeSentinel, ""))
	}
	return blocks
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	default:
		return false
	}
}

func isCenterStyled(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "align" && strings.EqualFold(a.Val, "center") {
			return true
		}
		if a.Key == "style" && strings.Contains(strings.ToLower(a.Val), "text-align:center") {
			return true
		}
	}
	return false
}

// markStrikethrough wraps the text of every <strike>/<s>/<del> subtree (or
// anything styled text-decoration:line-through) in sentinel markers so
// blockify can tell which re-blocked lines were struck through once tags
// are gone.
func markStrikethrough(n *html.Node) {
	if n.Type == html.ElementNode && isStrikeElement(n) {
		wrapTextNodes(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markStrikethrough(c)
	}
}

func isStrikeElement(n *html.Node) bool {
	switch n.Data {
	case "strike", "s", "del":
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "style" && strings.Contains(strings.ToLower(a.Val), "line-through") {
			return true
		}
	}
	return false
}

func wrapTextNodes(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = strikeSentinel + n.Data + strikeSentinel
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		wrapTextNodes(c)
	}
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

func splitOnBlankLines(text string) []block {
	var blocks []block
	for _, chunk := range blankLinePattern.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		revoked := strings.Contains(chunk, strikeSentinel)
		chunk = strings.ReplaceAll(chunk, strikeSentinel, "")
		blocks = append(blocks, block{text: strings.TrimSpace(chunk), revoked: revoked})
	}
	return blocks
}

var blankLinePattern = regexp.MustCompile(`\n\s*\n+`)

// dropTrailingIndice implements spec §4.6 step 2: some sources append a
// full "ÍNDICE" table of contents after the law body; once that heading
// block is seen, everything from it onward is discarded.
func dropTrailingIndice(blocks []block) []block {
	for i, b := range blocks {
		if strings.EqualFold(strings.TrimSpace(b.text), "ÍNDICE") {
			return blocks[:i]
		}
	}
	return blocks
}

// mojibakeReplacer implements spec §4.6 step 3 / S-MOJIBAKE-TABLE: a
// concrete substitution table for the Planalto-specific corruptions the
// original importer patches for.
var mojibakeReplacer = strings.NewReplacer(
	"CAP�TULO", "CAPÍTULO",
	"Se��o", "Seção",
	"SE��O", "SEÇÃO",
	"T�TULO", "TÍTULO",
	"par�grafo", "parágrafo",
	"Par�grafo", "Parágrafo",
	"�nico", "único",
	"disposi��es", "disposições",
	"Disposi��es", "Disposições",
	"art�culo", "artículo",
	"n�mero", "número",
)

func correctMojibake(text string) string {
	return mojibakeReplacer.Replace(text)
}

// Classification regexes, shared in spirit with the tag parser (spec §4.6
// "same prefix regexes as §4.5").
var (
	hierarchyPattern    = regexp.MustCompile(`(?i)^(PARTE|LIVRO|T[ÍI]TULO|CAP[ÍI]TULO|SE[ÇC][ÃA]O|SUBSE[ÇC][ÃA]O|SUBT[ÍI]TULO)\s+([IVXLCDM]+(?:-[A-Z])?)\b\s*(.*)$`)
	hierarchyLabelOnly  = regexp.MustCompile(`(?i)^(PARTE|LIVRO|T[ÍI]TULO|CAP[ÍI]TULO|SE[ÇC][ÃA]O|SUBSE[ÇC][ÃA]O|SUBT[ÍI]TULO)\s+([IVXLCDM]+(?:-[A-Z])?)\b`)
	articlePattern      = regexp.MustCompile(`^Art\.?\s*(\d+)\s*[ºª°o]?\s*(-[A-Z])?\.?\s*(.*)$`)
	paragraphPattern    = regexp.MustCompile(`^§\s*(\d+)\s*[ºª°]?\.?\s*(.*)$`)
	soleParagraphRe     = regexp.MustCompile(`(?i)^par[áa]grafo\s+[úu]nico\.?\s*(.*)$`)
	romanClausePattern  = regexp.MustCompile(`^([IVXLCDM]+)\s*[-–—]\s*(.*)$`)
	alineaPattern       = regexp.MustCompile(`^([a-z])\)\s*(.*)$`)
	penaltyPattern      = regexp.MustCompile(`(?i)^pena\s*[-–—]\s*(.*)$`)
)

var hierarchyKindByLabel = map[string]lawmodel.Kind{
	"PARTE": lawmodel.KindPart, "LIVRO": lawmodel.KindBook,
	"TÍTULO": lawmodel.KindTitle, "TITULO": lawmodel.KindTitle,
	"SUBTÍTULO": lawmodel.KindSubtitle, "SUBTITULO": lawmodel.KindSubtitle,
	"CAPÍTULO": lawmodel.KindChapter, "CAPITULO": lawmodel.KindChapter,
	"SEÇÃO": lawmodel.KindSection, "SECAO": lawmodel.KindSection,
	"SUBSEÇÃO": lawmodel.KindSubsection, "SUBSECAO": lawmodel.KindSubsection,
}

// expandMultiLabelBlocks implements spec §4.6 step 5: a single line that
// concatenates several headings ("TÍTULO I CAPÍTULO I") is split into one
// synthetic block per label, all inheriting the parent block's
// revoked/centered flags.
func expandMultiLabelBlocks(blocks []block) []block {
	var out []block
	for _, b := range blocks {
		labels := splitLabels(b.text)
		if len(labels) < 2 {
			out = append(out, b)
			continue
		}
		for _, label := range labels {
			out = append(out, block{text: label, revoked: b.revoked, centered: b.centered})
		}
	}
	return out
}

func splitLabels(text string) []string {
	var labels []string
	remaining := text
	for {
		loc := hierarchyLabelOnly.FindStringIndex(remaining)
		if loc == nil || loc[0] != 0 {
			break
		}
		labels = append(labels, strings.TrimSpace(remaining[loc[0]:loc[1]]))
		remaining = strings.TrimSpace(remaining[loc[1]:])
		if remaining == "" {
			break
		}
	}
	if len(labels) < 2 {
		return nil
	}
	if remaining != "" {
		labels[len(labels)-1] = labels[len(labels)-1] + " " + remaining
	}
	return labels
}

type classified struct {
	kind      lawmodel.Kind
	hierarchy bool
	number    string
	text      string
}

func classify(text string) classified {
	if m := hierarchyPattern.FindStringSubmatch(text); m != nil {
		kind := hierarchyKindByLabel[strings.ToUpper(m[1])]
		return classified{kind: kind, hierarchy: true, number: m[2], text: strings.TrimSpace(m[3])}
	}
	if m := articlePattern.FindStringSubmatch(text); m != nil {
		return classified{kind: lawmodel.KindArticle, number: m[1] + m[2], text: strings.TrimSpace(m[3])}
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
	return classified{text: text}
}

type pendingHeading struct {
	level   lawmodel.Kind
	heading string
}

// parser drives the seven-level hierarchy cursor and article/body tree
// construction described by spec §4.6 steps 4, 6, and 7.
type parser struct {
	structure *lawmodel.Structure
	path      map[string]string

	pendingHeader *pendingHeading

	articles []*lawmodel.LawElement

	currentArticle   *lawmodel.LawElement
	currentParagraph *lawmodel.LawElement
	currentClause    *lawmodel.LawElement
	currentAlinea    *lawmodel.LawElement
	lastTextual      *lawmodel.LawElement
}

func (p *parser) consume(b block) {
	c := classify(b.text)

	// Pending-description slot: a structural header absorbs the next
	// block's text only when that block is centered and otherwise plain
	// (spec §4.6 step 4, "pending-description slot ... on the next
	// centered block").
	if p.pendingHeader != nil {
		if b.centered && c.kind == "" && !c.hierarchy {
			pending := p.pendingHeader
			p.pendingHeader = nil
			p.openHeading(pending.level, pending.heading+" - "+c.text)
			return
		}
		p.flushPendingHeader()
	}

	switch {
	case c.hierarchy:
		p.handleHierarchy(c)
	case c.kind == lawmodel.KindArticle:
		p.startArticle(c, b.revoked)
	case c.kind == lawmodel.KindParagraph:
		p.startParagraph(c, b.revoked)
	case c.kind == lawmodel.KindRomanClause:
		p.startRomanClause(c, b.revoked)
	case c.kind == lawmodel.KindLetteredClause:
		p.startAlinea(c, b.revoked)
	case c.kind == lawmodel.KindPenalty:
		p.appendPenalty(c.text, b.revoked)
	default:
		p.handleUnclassified(c.text, b.centered, b.revoked)
	}
}

func (p *parser) handleHierarchy(c classified) {
	heading := headingLabel(c.kind, c.number)
	if c.text != "" {
		p.openHeading(c.kind, heading+" - "+c.text)
		return
	}
	p.pendingHeader = &pendingHeading{level: c.kind, heading: heading}
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

func (p *parser) flushPendingHeader() {
	if p.pendingHeader == nil {
		return
	}
	pending := p.pendingHeader
	p.pendingHeader = nil
	p.openHeading(pending.level, pending.heading)
}

// openHeading appends heading at level to the flat estrutura list and the
// hierarchy tree, and clears every deeper level's path entry — any
// transition at level L clears all deeper levels (spec §4.6 step 4).
func (p *parser) openHeading(level lawmodel.Kind, heading string) {
	p.structure.Append(level, heading)

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

func (p *parser) startArticle(c classified, revoked bool) {
	article := lawmodel.NewElement(lawmodel.KindArticle)
	article.Number = c.number
	article.Path = clonePath(p.path)
	article.TextuallyRevoked = revoked

	p.articles = append(p.articles, article)
	p.currentArticle = article
	p.currentParagraph = nil
	p.currentClause = nil
	p.currentAlinea = nil
	p.lastTextual = nil

	if c.text != "" {
		caput := p.caputOf(article)
		caput.Text = c.text
		caput.TextuallyRevoked = revoked
		p.lastTextual = caput
	}
}

func (p *parser) startParagraph(c classified, revoked bool) {
	if p.currentArticle == nil {
		return
	}
	node := lawmodel.NewElement(lawmodel.KindParagraph)
	node.Number = c.number
	node.Text = c.text
	node.TextuallyRevoked = revoked
	p.currentArticle.Children = append(p.currentArticle.Children, node)
	p.currentParagraph = node
	p.currentClause = nil
	p.currentAlinea = nil
	p.lastTextual = node
}

func (p *parser) startRomanClause(c classified, revoked bool) {
	if p.currentArticle == nil {
		return
	}
	parent := p.containerForClause()
	node := lawmodel.NewElement(lawmodel.KindRomanClause)
	node.Number = c.number
	node.Text = c.text
	node.TextuallyRevoked = revoked
	parent.Children = append(parent.Children, node)
	p.currentClause = node
	p.currentAlinea = nil
	p.lastTextual = node
}

func (p *parser) containerForClause() *lawmodel.LawElement {
	if p.currentParagraph != nil {
		return p.currentParagraph
	}
	return p.currentArticle
}

func (p *parser) startAlinea(c classified, revoked bool) {
	if p.currentArticle == nil {
		return
	}
	parent := p.currentClause
	if parent == nil {
		parent = p.containerForClause()
	}
	node := lawmodel.NewElement(lawmodel.KindLetteredClause)
	node.Number = c.number
	node.Text = c.text
	node.TextuallyRevoked = revoked
	parent.Children = append(parent.Children, node)
	p.currentAlinea = node
	p.lastTextual = node
}

// appendPenalty attaches a "Pena -" line to the current paragraph (or
// article), preserving order; a struck-through penalty line keeps
// textually_revoked alongside a struck-through article it follows (spec
// §4.6 step 7).
func (p *parser) appendPenalty(text string, revoked bool) {
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
	node.TextuallyRevoked = revoked
	parent.Children = append(parent.Children, node)
	p.lastTextual = node
}

// handleUnclassified implements spec §4.6 step 6: a line that begins with
// lowercase or punctuation merges into the last textual element only
// under the stated conditions; anything else becomes an orphan.
func (p *parser) handleUnclassified(text string, centered bool, revoked bool) {
	if p.isContinuation(text, centered) {
		p.mergeIntoContainer(text, revoked)
		return
	}
	p.structure.AddOrphan(text)
}

func (p *parser) isContinuation(text string, centered bool) bool {
	first := firstNonSpaceRune(text)
	startsLowerOrPunct := unicode.IsLower(first) || unicode.IsPunct(first)
	if !startsLowerOrPunct || centered {
		return false
	}
	isParenAnnotation := strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")
	return !lastBodyEndsSentence(p.lastTextual) || isParenAnnotation
}

func lastBodyEndsSentence(el *lawmodel.LawElement) bool {
	if el == nil {
		return true
	}
	trimmed := strings.TrimRight(el.Text, " ")
	if trimmed == "" {
		return true
	}
	runes := []rune(trimmed)
	last := runes[len(runes)-1]
	switch last {
	case '.', ':', ';', '!', '?':
		return true
	default:
		return false
	}
}

func (p *parser) mergeIntoContainer(text string, revoked bool) {
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
	if revoked {
		target.TextuallyRevoked = true
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

func firstNonSpaceRune(s string) rune {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

func clonePath(path map[string]string) map[string]string {
	out := make(map[string]string, len(path))
	for k, v := range path {
		out[k] = v
	}
	return out
}
