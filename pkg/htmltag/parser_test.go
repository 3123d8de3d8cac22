package htmltag

import (
	"testing"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

func TestParseSimpleArticleWithCaput(t *testing.T) {
	source := `<html><body>
		<p>Art. 1º Esta lei institui o programa nacional.</p>
	</body></html>`

	articles, _ := Parse(source)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if articles[0].Number != "1" {
		t.Errorf("article number = %q, want 1", articles[0].Number)
	}
	if len(articles[0].Children) != 1 || articles[0].Children[0].Kind != lawmodel.KindCaput {
		t.Fatalf("expected single caput child, got %+v", articles[0].Children)
	}
	if articles[0].Children[0].Text != "Esta lei institui o programa nacional." {
		t.Errorf("caput text = %q", articles[0].Children[0].Text)
	}
}

func TestParseParagraphAndRomanClause(t *testing.T) {
	source := `<html><body>
		<p>Art. 2º O programa observará os seguintes princípios:</p>
		<p>§ 1º Os princípios são complementares entre si.</p>
		<p>I - transparência;</p>
		<p>II - eficiência.</p>
	</body></html>`

	articles, _ := Parse(source)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	paragraphs := articles[0].Children
	if len(paragraphs) != 2 { // caput + paragraph
		t.Fatalf("got %d children, want 2 (caput, paragraph)", len(paragraphs))
	}
	paragraph := paragraphs[1]
	if paragraph.Kind != lawmodel.KindParagraph || paragraph.Number != "1" {
		t.Fatalf("unexpected paragraph: %+v", paragraph)
	}
	if len(paragraph.Children) != 2 {
		t.Fatalf("got %d clauses, want 2", len(paragraph.Children))
	}
	if paragraph.Children[0].Number != "I" || paragraph.Children[1].Number != "II" {
		t.Errorf("unexpected clause numbers: %q, %q", paragraph.Children[0].Number, paragraph.Children[1].Number)
	}
}

func TestParseSoleParagraph(t *testing.T) {
	source := `<html><body>
		<p>Art. 3º Fica vedada a cessão de direitos.</p>
		<p>Parágrafo único. Aplica-se também aos sucessores.</p>
	</body></html>`

	articles, _ := Parse(source)
	if len(articles[0].Children) != 2 {
		t.Fatalf("got %d children, want caput+paragraph", len(articles[0].Children))
	}
	paragraph := articles[0].Children[1]
	if paragraph.Kind != lawmodel.KindParagraph || paragraph.Number != "unico" {
		t.Fatalf("unexpected sole paragraph: %+v", paragraph)
	}
}

func TestParsePenaltyAttachesToArticle(t *testing.T) {
	source := `<html><body>
		<p>Art. 4º Praticar ato ilícito contra o patrimônio público.</p>
		<p>Pena - reclusão, de 2 a 6 anos, e multa.</p>
	</body></html>`

	articles, _ := Parse(source)
	if len(articles[0].Children) != 2 {
		t.Fatalf("got %d children, want caput+penalty", len(articles[0].Children))
	}
	if articles[0].Children[1].Kind != lawmodel.KindPenalty {
		t.Fatalf("expected penalty element, got %+v", articles[0].Children[1])
	}
}

func TestParseHierarchyHeadings(t *testing.T) {
	source := `<h3>TÍTULO I</h3>
	<p>DISPOSIÇÕES GERAIS</p>
	<p>Art. 1º O disposto nesta lei aplica-se a todos.</p>`

	articles, structure := Parse(source)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if len(structure.Estrutura.Titulos) != 1 {
		t.Fatalf("titulos = %v, want 1 entry", structure.Estrutura.Titulos)
	}
	want := "TÍTULO I - DISPOSIÇÕES GERAIS"
	if structure.Estrutura.Titulos[0] != want {
		t.Errorf("titulo heading = %q, want %q", structure.Estrutura.Titulos[0], want)
	}
	if articles[0].Path[string(lawmodel.KindTitle)] != want {
		t.Errorf("article path missing title heading: %+v", articles[0].Path)
	}
}

func TestParseEpigraphBeforeArticle(t *testing.T) {
	source := `<p><b>Da Aplicação da Lei Penal</b></p>
	<p>Art. 1º Não há crime sem lei anterior que o defina.</p>`

	articles, _ := Parse(source)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if articles[0].Epigraph != "Da Aplicação da Lei Penal" {
		t.Errorf("epigraph = %q, want %q", articles[0].Epigraph, "Da Aplicação da Lei Penal")
	}
}

func TestParseMidArticleRubricBindsToNextParagraph(t *testing.T) {
	source := `<p>Art. 1º Compete à autoridade fiscalizar o cumprimento desta lei.</p>
	<p><b>Da Multa</b></p>
	<p>§ 1º Será aplicada multa de até R$ 10.000,00.</p>`

	articles, _ := Parse(source)
	if len(articles[0].Children) != 2 {
		t.Fatalf("got %d children, want caput+paragraph", len(articles[0].Children))
	}
	paragraph := articles[0].Children[1]
	if paragraph.Kind != lawmodel.KindParagraph || paragraph.Epigraph != "Da Multa" {
		t.Fatalf("expected paragraph with rubric %q, got %+v", "Da Multa", paragraph)
	}
}

func TestParseMidArticleRubricDiscardedAtArticleBoundary(t *testing.T) {
	source := `<p>Art. 1º Compete à autoridade fiscalizar o cumprimento desta lei.</p>
	<p><b>Da Multa</b></p>
	<p>Art. 2º Esta lei entra em vigor na data de sua publicação.</p>
	<p>§ 1º Revogam-se as disposições em contrário.</p>`

	articles, _ := Parse(source)
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	paragraph := articles[1].Children[1]
	if paragraph.Kind != lawmodel.KindParagraph || paragraph.Epigraph != "" {
		t.Fatalf("rubric from article 1 should not carry into article 2, got %+v", paragraph)
	}
}

func TestParseSyntheticParteGeral(t *testing.T) {
	source := `<p>Este código adota a Parte Geral do direito penal comum.</p>
	<h3>TÍTULO I</h3>
	<p>DA APLICAÇÃO DA LEI PENAL</p>
	<p>Art. 1º Não há crime sem lei anterior que o defina.</p>`

	_, structure := Parse(source)
	if len(structure.Estrutura.Partes) != 1 || structure.Estrutura.Partes[0] != "Parte geral" {
		t.Fatalf("partes = %v, want synthetic [Parte geral]", structure.Estrutura.Partes)
	}
}

func TestClassifyContinuationVsOrphan(t *testing.T) {
	lower := classify(block{text: "que trata do assunto anterior."})
	if lower.kind != "" || lower.hierarchy || lower.epigraph {
		t.Errorf("expected plain body classification for lowercase text, got %+v", lower)
	}

	upper := classify(block{text: "Considerando o disposto no artigo anterior."})
	if upper.kind != "" || upper.hierarchy || upper.epigraph {
		t.Errorf("expected plain body classification for orphan text, got %+v", upper)
	}
}
