// Package emit converts the intermediate LawElement tree into the final
// article/plate-block JSON shape: slugs, URNs, rich-text blocks, the
// annotation split, and the revoked-version merge (spec §4.7).
package emit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jusnote/lawimporter/pkg/annotation"
	"github.com/jusnote/lawimporter/pkg/lawmodel"
	"github.com/jusnote/lawimporter/pkg/urnslug"
)

// Stats reports emit-boundary diagnostics that are counted, never fatal
// (spec §4.7, "Error reporting at the emit boundary is limited to a
// counter of URN→slug mismatches").
type Stats struct {
	URNSlugMismatches int
}

// romanToArabic covers the roman numerals this importer ever needs to
// convert a roman_clause number into the arabic form its URN token and
// slug segment use (spec §4.7 step 5, "I…XX").
var romanToArabic = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6, "VII": 7, "VIII": 8,
	"IX": 9, "X": 10, "XI": 11, "XII": 12, "XIII": 13, "XIV": 14, "XV": 15,
	"XVI": 16, "XVII": 17, "XVIII": 18, "XIX": 19, "XX": 20,
}

// Emit converts articles (top-level LawElements of kind article) into the
// final Article slice: sorted, slugified, annotation-split, merged, with
// plate-content built recursively.
func Emit(articles []*lawmodel.LawElement, lawBaseURN string) ([]lawmodel.Article, Stats) {
	stats := Stats{}
	built := make([]lawmodel.Article, 0, len(articles))

	for _, el := range articles {
		built = append(built, buildArticle(el, lawBaseURN, &stats))
	}

	built = mergeRevoked(built)
	sort.SliceStable(built, func(i, j int) bool {
		return lessArticle(built[i], built[j])
	})

	return built, stats
}

func buildArticle(el *lawmodel.LawElement, lawBaseURN string, stats *Stats) lawmodel.Article {
	slugBase := "artigo-" + el.Number
	if el.TextuallyRevoked {
		slugBase += "-revogado"
	}

	urn := el.URN
	if urn == "" {
		urn = lawBaseURN + "!art" + urnArticleToken(el.Number)
	}
	checkMismatch(urn, slugBase, stats)

	var blocks []lawmodel.PlateBlock
	if el.Epigraph != "" {
		blocks = append(blocks, plainBlock(el.Epigraph, slugBase+"_epigrafe", "", true))
	}

	ctx := &buildCtx{stats: stats, articleLabel: ArticleLabel(el.Number)}
	for _, child := range el.Children {
		blocks = append(blocks, ctx.buildChild(child, slugBase, urn)...)
	}

	article := lawmodel.Article{
		ID:              uuid.New().String(),
		Number:          el.Number,
		Slug:            slugBase,
		Epigraph:        el.Epigraph,
		PlateContent:    blocks,
		InForce:         el.InForce,
		Context:         buildContext(el.Path),
		Path:            el.Path,
		RevokedVersions: []*lawmodel.Article{},
	}
	article.TextoPlano = textoPlano(blocks)
	article.SearchText = searchTextAll(blocks)
	article.ContentHash = contentHash(article.TextoPlano)
	return article
}

// buildCtx carries per-article emit state (mismatch counting, the
// article's label for its caput block) into the recursive child walk.
type buildCtx struct {
	stats        *Stats
	articleLabel string
}

// buildChild converts one body LawElement (caput, paragraph, clause,
// alinea, item, penalty) into its plate block(s), recursing into its own
// children with the accumulated dotted slug and URN prefix.
func (ctx *buildCtx) buildChild(el *lawmodel.LawElement, parentSlug, parentURN string) []lawmodel.PlateBlock {
	var out []lawmodel.PlateBlock

	// A rubric bound to this paragraph/clause by the parser (spec §4.5,
	// "an epigraph arriving inside an article is attached as a rubric
	// bound to the next paragraph/clause") emits its own bold block ahead
	// of the body, slugged "…-epigraph" (spec §4.7 step 5).
	emitRubric := func(slug string) {
		if el.Epigraph == "" {
			return
		}
		out = append(out, plainBlock(el.Epigraph, slug+"-epigraph", "", true))
	}

	switch el.Kind {
	case lawmodel.KindCaput:
		slug := "caput"
		urn := parentURN + "_cpt"
		checkMismatch(urn, parentSlug+".caput", ctx.stats)
		out = append(out, ctx.bodyBlock(el, ctx.articleLabel, slug, urn))
		for _, c := range el.Children {
			out = append(out, ctx.buildChild(c, parentSlug, urn)...)
		}
		return out

	case lawmodel.KindPenalty:
		stripped := *el
		stripped.Text = penaltyBody(el.Text)
		out = append(out, ctx.bodyBlock(&stripped, "Pena", parentSlug+".pena", parentURN+"_pen"))
		return out

	case lawmodel.KindParagraph:
		segment := "paragrafo-" + el.Number
		if el.TextuallyRevoked {
			segment += "-revogado"
		}
		slug := parentSlug + "." + segment
		urn := parentURN + "_par" + urnNumberToken(el.Number)
		checkMismatch(urn, slug, ctx.stats)
		emitRubric(slug)
		out = append(out, ctx.bodyBlock(el, paragraphLabel(el.Number), slug, urn))
		for _, c := range el.Children {
			out = append(out, ctx.buildChild(c, slug, urn)...)
		}
		return out

	case lawmodel.KindRomanClause:
		arabic := arabicOf(el.Number)
		segment := "inciso-" + arabic
		if el.TextuallyRevoked {
			segment += "-revogado"
		}
		slug := parentSlug + "." + segment
		urn := parentURN + "_inc" + arabic
		checkMismatch(urn, slug, ctx.stats)
		emitRubric(slug)
		out = append(out, ctx.bodyBlock(el, el.Number+" -", slug, urn))
		for _, c := range el.Children {
			out = append(out, ctx.buildChild(c, slug, urn)...)
		}
		return out

	case lawmodel.KindLetteredClause:
		segment := "alinea-" + el.Number
		if el.TextuallyRevoked {
			segment += "-revogado"
		}
		slug := parentSlug + "." + segment
		urn := parentURN + "_ali" + el.Number
		checkMismatch(urn, slug, ctx.stats)
		emitRubric(slug)
		out = append(out, ctx.bodyBlock(el, el.Number+")", slug, urn))
		for _, c := range el.Children {
			out = append(out, ctx.buildChild(c, slug, urn)...)
		}
		return out

	case lawmodel.KindItem:
		segment := "item-" + el.Number
		if el.TextuallyRevoked {
			segment += "-revogado"
		}
		slug := parentSlug + "." + segment
		urn := parentURN + "_ite" + el.Number
		checkMismatch(urn, slug, ctx.stats)
		emitRubric(slug)
		out = append(out, ctx.bodyBlock(el, el.Number+".", slug, urn))
		return out

	default:
		return nil
	}
}

// bodyBlock runs the annotation splitter on el.Text, substitutes the
// revoked/vetoed placeholder body when the clean text is empty, and
// assembles the final PlateBlock (spec §4.7 step 6).
func (ctx *buildCtx) bodyBlock(el *lawmodel.LawElement, label, slug, urn string) lawmodel.PlateBlock {
	clean, original, annotations := annotation.Split(el.Text)

	revoked := el.TextuallyRevoked
	vetoed := false
	body := clean
	strike := false
	color := ""

	if annotation.IsEmptyBody(clean) && len(annotations) > 0 {
		switch annotation.InferStatus(annotations) {
		case annotation.StatusRevoked:
			body = "Dispositivo revogado."
			revoked = true
			strike = true
			color = "gray"
		case annotation.StatusVetoed:
			body = "Dispositivo vetado."
			vetoed = true
			strike = true
			color = "gray"
		default:
			body = clean
		}
	}

	children := []lawmodel.PlateTextRun{{Text: label + " ", Bold: true}}
	if body != "" {
		children = append(children, lawmodel.PlateTextRun{Text: body, Strikethrough: strike, Color: color})
	}

	block := lawmodel.PlateBlock{
		Type:       "p",
		Children:   children,
		ID:         uuid.New().String(),
		Slug:       slug,
		URN:        urn,
		SearchText: cleanSearchText(label, clean),
		Revoked:    revoked,
		Vetoed:     vetoed,
	}
	if original != clean {
		block.TextoOriginal = label + " " + original
		block.Anotacoes = annotations
	}
	return block
}

// penaltyBody strips the parsers' baked-in "Pena -" prefix so the emitter
// can re-add it as the block's own bold label without duplicating it.
func penaltyBody(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "pena") {
		rest := trimmed[len("pena"):]
		rest = strings.TrimLeft(rest, " -–—")
		return strings.TrimSpace(rest)
	}
	return trimmed
}

func plainBlock(text, slug, urn string, bold bool) lawmodel.PlateBlock {
	return lawmodel.PlateBlock{
		Type:       "p",
		Children:   []lawmodel.PlateTextRun{{Text: text, Bold: bold}},
		ID:         uuid.New().String(),
		Slug:       slug,
		URN:        urn,
		SearchText: strings.TrimSpace(text),
	}
}

func cleanSearchText(label, clean string) string {
	return strings.TrimSpace(label + " " + clean)
}

// checkMismatch validates urn's fragment converts (via urnslug) to want,
// counting a diagnostic mismatch without ever failing emission (spec
// §4.7's "counter of URN→slug mismatches"). Non-numeric tokens (sole
// paragraph, lettered clauses) fall outside urnslug's supported forms and
// are not counted as mismatches — see DESIGN.md.
func checkMismatch(urn, want string, stats *Stats) {
	result := urnslug.Convert(urnslug.FragmentOf(urn))
	if !result.Ok {
		return
	}
	if result.Slug != want {
		stats.URNSlugMismatches++
	}
}

func urnArticleToken(number string) string {
	base := strings.ToLower(strings.ReplaceAll(number, "-", ""))
	return base
}

func urnNumberToken(number string) string {
	if number == "unico" {
		return "unico"
	}
	return strings.ToLower(number)
}

func arabicOf(roman string) string {
	if n, ok := romanToArabic[strings.ToUpper(roman)]; ok {
		return strconv.Itoa(n)
	}
	return strings.ToLower(roman)
}

// paragraphLabel formats the label per spec §4.7 step 5 and scenario 2:
// "§ Nº" for N ≤ 9, "§ N" for N ≥ 10, "Parágrafo único" for the sole
// paragraph.
func paragraphLabel(number string) string {
	if number == "unico" {
		return "Parágrafo único"
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return "§ " + number
	}
	if n <= 9 {
		return fmt.Sprintf("§ %dº", n)
	}
	return fmt.Sprintf("§ %d", n)
}

// ArticleLabel formats an article number per spec §8 scenario 1: ordinal
// "Art. Nº" for N ≤ 9, cardinal "Art. N" for N ≥ 10, with any "-A"..."-Z"
// suffix appended after the ordinal glyph.
func ArticleLabel(number string) string {
	base, suffix := splitArticleSuffix(number)
	n, err := strconv.Atoi(base)
	if err != nil {
		return "Art. " + number
	}
	if n <= 9 {
		return fmt.Sprintf("Art. %dº%s", n, suffix)
	}
	return fmt.Sprintf("Art. %d%s", n, suffix)
}

func splitArticleSuffix(number string) (base, suffix string) {
	idx := strings.LastIndex(number, "-")
	if idx == -1 {
		return number, ""
	}
	return number[:idx], number[idx:]
}

func buildContext(path map[string]string) string {
	parts := make([]string, 0, len(lawmodel.HierarchyLevels))
	for _, level := range lawmodel.HierarchyLevels {
		if heading, ok := path[string(level)]; ok && heading != "" {
			parts = append(parts, heading)
		}
	}
	return strings.Join(parts, " > ")
}

// textoPlano is the concatenation of body texts (never epigraphs) in emit
// order, separated by single newlines (spec §3).
func textoPlano(blocks []lawmodel.PlateBlock) string {
	var lines []string
	for _, b := range blocks {
		if isEpigraphSlug(b.Slug) {
			continue
		}
		if body := bodyTextOf(b); body != "" {
			lines = append(lines, body)
		}
	}
	return strings.Join(lines, "\n")
}

func searchTextAll(blocks []lawmodel.PlateBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.SearchText != "" {
			parts = append(parts, b.SearchText)
		}
	}
	return strings.Join(parts, " ")
}

func isEpigraphSlug(slug string) bool {
	return strings.HasSuffix(slug, "_epigrafe") || strings.HasSuffix(slug, "-epigraph")
}

func bodyTextOf(b lawmodel.PlateBlock) string {
	// The label run is always first and bold; the body (if any) is the
	// remaining runs.
	if len(b.Children) < 2 {
		return ""
	}
	var parts []string
	for _, run := range b.Children[1:] {
		parts = append(parts, run.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// contentHash is a deterministic fingerprint of textoPlano (spec §3): a
// hex-encoded SHA-256 digest. No example repo pulls a dedicated hashing
// library for content fingerprints; crypto/sha256 is the ecosystem-idiomatic
// choice here (see DESIGN.md).
func contentHash(textoPlano string) string {
	sum := sha256.Sum256([]byte(textoPlano))
	return hex.EncodeToString(sum[:])
}

// mergeRevoked implements spec §4.7 step 7 and the core invariant: group
// articles by number; when both an in-force and one or more revoked
// variants exist, the in-force article absorbs the revoked ones into
// RevokedVersions (inheriting their epigraph if it lacks one) and the
// revoked entries are dropped from the top-level list.
func mergeRevoked(articles []lawmodel.Article) []lawmodel.Article {
	byNumber := map[string][]int{}
	for i, a := range articles {
		byNumber[a.Number] = append(byNumber[a.Number], i)
	}

	drop := map[int]bool{}
	for _, idxs := range byNumber {
		if len(idxs) < 2 {
			continue
		}
		var inForceIdx = -1
		for _, i := range idxs {
			if articles[i].InForce {
				inForceIdx = i
				break
			}
		}
		if inForceIdx == -1 {
			continue
		}
		for _, i := range idxs {
			if i == inForceIdx || articles[i].InForce {
				continue
			}
			revoked := articles[i]
			if articles[inForceIdx].Epigraph == "" && revoked.Epigraph != "" {
				articles[inForceIdx].Epigraph = revoked.Epigraph
			}
			articles[inForceIdx].RevokedVersions = append(articles[inForceIdx].RevokedVersions, &revoked)
			drop[i] = true
		}
	}

	out := make([]lawmodel.Article, 0, len(articles))
	for i, a := range articles {
		if drop[i] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// lessArticle implements the sorted-output law: consecutive articles
// compare by (int(number_prefix), lexicographic suffix); malformed numbers
// fall back to (0, original_string) (spec §7).
func lessArticle(a, b lawmodel.Article) bool {
	na, sa := sortKey(a.Number)
	nb, sb := sortKey(b.Number)
	if na != nb {
		return na < nb
	}
	return sa < sb
}

func sortKey(number string) (int, string) {
	base, suffix := splitArticleSuffix(number)
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, number
	}
	return n, suffix
}
