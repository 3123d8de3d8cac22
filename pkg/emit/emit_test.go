package emit

import (
	"strings"
	"testing"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

func newArticle(number, text string) *lawmodel.LawElement {
	article := lawmodel.NewElement(lawmodel.KindArticle)
	article.Number = number
	caput := lawmodel.NewElement(lawmodel.KindCaput)
	caput.Text = text
	article.Children = []*lawmodel.LawElement{caput}
	return article
}

func TestArticleLabelOrdinalRendering(t *testing.T) {
	testCases := []struct {
		number string
		want   string
	}{
		{"1", "Art. 1º"},
		{"10", "Art. 10"},
		{"121-A", "Art. 121-A"},
	}
	for _, tc := range testCases {
		if got := ArticleLabel(tc.number); got != tc.want {
			t.Errorf("ArticleLabel(%q) = %q, want %q", tc.number, got, tc.want)
		}
	}
}

func TestEmitParagraphUnico(t *testing.T) {
	article := newArticle("5", "Fica instituido.")
	paragraph := lawmodel.NewElement(lawmodel.KindParagraph)
	paragraph.Number = "unico"
	paragraph.Text = "Texto do paragrafo."
	article.Children = append(article.Children, paragraph)

	articles, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:lei:2000;5")
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}

	var found bool
	for _, b := range articles[0].PlateContent {
		if b.Slug == "artigo-5.paragrafo-unico" {
			found = true
			if !strings.Contains(b.Children[0].Text, "Parágrafo único") {
				t.Errorf("label run = %q, want to contain %q", b.Children[0].Text, "Parágrafo único")
			}
		}
	}
	if !found {
		t.Fatalf("expected a block with slug artigo-5.paragrafo-unico, got %+v", articles[0].PlateContent)
	}
}

func TestEmitRomanClauseUnderParagraph(t *testing.T) {
	article := newArticle("121", "")
	paragraph := lawmodel.NewElement(lawmodel.KindParagraph)
	paragraph.Number = "2"
	paragraph.Text = "texto do paragrafo"
	clause := lawmodel.NewElement(lawmodel.KindRomanClause)
	clause.Number = "IV"
	clause.Text = "pena-o;"
	paragraph.Children = []*lawmodel.LawElement{clause}
	article.Children = append(article.Children, paragraph)

	articles, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:decreto.lei:1940;2848")

	var clauseBlock *lawmodel.PlateBlock
	for i, b := range articles[0].PlateContent {
		if b.Slug == "artigo-121.paragrafo-2.inciso-4" {
			clauseBlock = &articles[0].PlateContent[i]
		}
	}
	if clauseBlock == nil {
		t.Fatalf("expected slug artigo-121.paragrafo-2.inciso-4, got %+v", articles[0].PlateContent)
	}
	if clauseBlock.Children[0].Text != "IV - " {
		t.Errorf("clause label run = %q, want %q", clauseBlock.Children[0].Text, "IV - ")
	}
}

func TestEmitMidArticleRubric(t *testing.T) {
	article := newArticle("5", "")
	paragraph := lawmodel.NewElement(lawmodel.KindParagraph)
	paragraph.Number = "1"
	paragraph.Text = "texto do paragrafo"
	paragraph.Epigraph = "Da Multa"
	article.Children = append(article.Children, paragraph)

	articles, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:lei:2000;5")

	var rubricBlock, bodyBlock *lawmodel.PlateBlock
	for i, b := range articles[0].PlateContent {
		switch b.Slug {
		case "artigo-5.paragrafo-1-epigraph":
			rubricBlock = &articles[0].PlateContent[i]
		case "artigo-5.paragrafo-1":
			bodyBlock = &articles[0].PlateContent[i]
		}
	}
	if rubricBlock == nil {
		t.Fatalf("expected a artigo-5.paragrafo-1-epigraph block, got %+v", articles[0].PlateContent)
	}
	if rubricBlock.Children[0].Text != "Da Multa" || !rubricBlock.Children[0].Bold {
		t.Errorf("rubric block run = %+v, want bold %q", rubricBlock.Children[0], "Da Multa")
	}
	if bodyBlock == nil {
		t.Fatalf("expected a artigo-5.paragrafo-1 block, got %+v", articles[0].PlateContent)
	}
	if strings.Contains(articles[0].TextoPlano, "Da Multa") {
		t.Errorf("texto_plano should not contain the rubric, got %q", articles[0].TextoPlano)
	}
}

func TestEmitRevokedMerge(t *testing.T) {
	revoked := newArticle("121", "texto antigo")
	revoked.InForce = false
	revoked.TextuallyRevoked = true

	inForce := newArticle("121", "texto atual")
	inForce.InForce = true

	articles, _ := Emit([]*lawmodel.LawElement{revoked, inForce}, "urn:lex:br:federal:decreto.lei:1940;2848")

	var count int
	for _, a := range articles {
		if a.Number == "121" {
			count++
			if !a.InForce {
				t.Errorf("merged article should be in force")
			}
			if len(a.RevokedVersions) != 1 {
				t.Fatalf("got %d revoked versions, want 1", len(a.RevokedVersions))
			}
			if a.RevokedVersions[0].InForce {
				t.Errorf("revoked version should not be in force")
			}
		}
	}
	if count != 1 {
		t.Fatalf("got %d top-level article 121 entries, want 1", count)
	}
}

func TestEmitEmptyBodyVeto(t *testing.T) {
	article := newArticle("10", "")
	clause := lawmodel.NewElement(lawmodel.KindRomanClause)
	clause.Number = "I"
	clause.Text = ". (Vetado pela Lei nº 1.234)"
	article.Children = append(article.Children, clause)

	articles, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:lei:2000;10")

	var clauseBlock *lawmodel.PlateBlock
	for i, b := range articles[0].PlateContent {
		if strings.HasSuffix(b.Slug, "inciso-1") {
			clauseBlock = &articles[0].PlateContent[i]
		}
	}
	if clauseBlock == nil {
		t.Fatalf("expected an inciso-1 block, got %+v", articles[0].PlateContent)
	}
	if !clauseBlock.Vetoed {
		t.Errorf("expected block to be vetoed")
	}
	body := clauseBlock.Children[1].Text
	if body != "Dispositivo vetado." {
		t.Errorf("body = %q, want %q", body, "Dispositivo vetado.")
	}
}

func TestEmitSortsArticles(t *testing.T) {
	a10 := newArticle("10", "dez")
	a2 := newArticle("2", "dois")
	a1A := newArticle("1-A", "um a")

	articles, _ := Emit([]*lawmodel.LawElement{a10, a2, a1A}, "urn:lex:br:federal:lei:2000;1")
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3", len(articles))
	}
	got := []string{articles[0].Number, articles[1].Number, articles[2].Number}
	want := []string{"1-A", "2", "10"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted order = %v, want %v", got, want)
		}
	}
}

func TestTextoPlanoExcludesEpigraph(t *testing.T) {
	article := newArticle("1", "corpo do artigo")
	article.Epigraph = "Rubrica do artigo"

	articles, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:lei:2000;1")
	if strings.Contains(articles[0].TextoPlano, "Rubrica") {
		t.Errorf("texto_plano should not contain the epigraph, got %q", articles[0].TextoPlano)
	}
	if !strings.Contains(articles[0].TextoPlano, "corpo do artigo") {
		t.Errorf("texto_plano should contain the caput body, got %q", articles[0].TextoPlano)
	}
}

func TestContentHashDeterministic(t *testing.T) {
	article := newArticle("1", "texto estavel")
	articles1, _ := Emit([]*lawmodel.LawElement{article}, "urn:lex:br:federal:lei:2000;1")

	article2 := newArticle("1", "texto estavel")
	articles2, _ := Emit([]*lawmodel.LawElement{article2}, "urn:lex:br:federal:lei:2000;1")

	if articles1[0].ContentHash != articles2[0].ContentHash {
		t.Errorf("content_hash should be deterministic for identical texto_plano")
	}
	if articles1[0].ID == articles2[0].ID {
		t.Errorf("plate/article ids should be random, not reused across runs")
	}
}
