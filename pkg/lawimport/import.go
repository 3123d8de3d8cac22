// Package lawimport ties acquisition, parsing, and emission into the
// single-shot import pipeline the CLI drives (spec §1's three
// subsystems, wired end to end).
package lawimport

import (
	"fmt"
	"os"
	"strings"

	"github.com/jusnote/lawimporter/pkg/acquire"
	"github.com/jusnote/lawimporter/pkg/emit"
	"github.com/jusnote/lawimporter/pkg/htmltag"
	"github.com/jusnote/lawimporter/pkg/htmltext"
	"github.com/jusnote/lawimporter/pkg/lawjson"
	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

// Options configures a single import run.
type Options struct {
	URN    string // canonical URN; takes precedence over Alias
	Alias  string // short name, resolved via the seed/override alias table
	HTML   string // path to a local HTML file; bypasses the network entirely
	Client *acquire.Client
}

// Outcome is everything a caller (the CLI) needs to report on a run.
type Outcome struct {
	Document   lawmodel.Document
	Stats      emit.Stats
	Warnings   []string
	ParserUsed string // "json", "htmltag", or "htmltext"
}

// Run executes the full pipeline: resolve an identifier, acquire a
// source, parse it into the element tree, and emit the final document.
func Run(opts Options) (Outcome, error) {
	identifier, err := resolveIdentifier(opts)
	if err != nil {
		return Outcome{}, err
	}

	result, err := acquireSource(opts, identifier)
	if err != nil {
		return Outcome{}, err
	}

	var (
		elements   []*lawmodel.LawElement
		structure  *lawmodel.Structure
		parserUsed string
		warnings   []string
	)

	switch result.Kind {
	case acquire.KindJSON:
		elements, structure = lawjson.Parse(result.JSON)
		parserUsed = "json"
	case acquire.KindHTML:
		elements, structure, parserUsed, warnings, err = parseHTML(result.HTML)
		if err != nil {
			return Outcome{}, err
		}
	}

	baseURN := result.Metadata.URN
	if baseURN == "" {
		baseURN = identifier
	}

	articles, stats := emit.Emit(elements, baseURN)

	doc := lawmodel.Document{
		Lei: lawmodel.LeiOutput{
			ID:         DeriveLeiID(baseURN),
			Nome:       result.Metadata.Title,
			Numero:     DeriveNumero(baseURN),
			Ementa:     result.Metadata.Ementa,
			URN:        baseURN,
			Hierarquia: structure.Hierarchy,
			Estrutura:  structure.Estrutura,
		},
		Artigos: articles,
	}

	warnings = append(warnings, orphanWarnings(structure.Estrutura.Orfaos)...)

	return Outcome{Document: doc, Stats: stats, Warnings: warnings, ParserUsed: parserUsed}, nil
}

func resolveIdentifier(opts Options) (string, error) {
	if opts.URN != "" {
		return opts.URN, nil
	}
	if opts.Alias != "" {
		if urn, ok := acquire.LookupAlias(opts.Alias); ok {
			return urn, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownAlias, opts.Alias)
	}
	if opts.HTML != "" {
		// A bare --planalto-html with no --urn/--lei still needs some
		// identifier to stand in for the law's URN in the output.
		return opts.HTML, nil
	}
	return "", ErrBadInput
}

// acquireSource dispatches to the local-HTML bypass or the network client
// per spec §4.3.
func acquireSource(opts Options, identifier string) (acquire.Result, error) {
	if opts.HTML != "" {
		html, err := decodeLocalHTML(opts.HTML)
		if err != nil {
			return acquire.Result{}, err
		}
		return acquire.FetchLocal(html, identifier), nil
	}

	client := opts.Client
	if client == nil {
		client = acquire.NewClient(acquire.Config{})
	}
	return client.Fetch(identifier)
}

// parseHTML selects between the tag-driven and text-driven HTML parsers
// per spec §4.6's selection rule, falling back to the other parser if the
// first produces zero articles, and declares failure only if both do
// (spec §7 "Parsing").
func parseHTML(source string) (elements []*lawmodel.LawElement, structure *lawmodel.Structure, used string, warnings []string, err error) {
	textFirst := os.Getenv("IMPORTER_TEXT_PARSER") == "1" || looksLikePlanalto(source)

	primary, fallback := "htmltag", "htmltext"
	if textFirst {
		primary, fallback = "htmltext", "htmltag"
	}

	elements, structure = runParser(primary, source)
	if len(elements) > 0 {
		return elements, structure, primary, nil, nil
	}
	warnings = append(warnings, fmt.Sprintf("%s produced no articles, falling back to %s", primary, fallback))

	elements, structure = runParser(fallback, source)
	if len(elements) > 0 {
		return elements, structure, fallback, warnings, nil
	}

	return nil, nil, "", warnings, ErrNoArticles
}

// runParser invokes the named parser, recovering from any panic so a
// malformed document degrades to "zero articles" (triggering the
// fallback) instead of crashing the pipeline.
func runParser(name, source string) (elements []*lawmodel.LawElement, structure *lawmodel.Structure) {
	defer func() {
		if recover() != nil {
			elements, structure = nil, nil
		}
	}()
	switch name {
	case "htmltext":
		return htmltext.Parse(source)
	default:
		return htmltag.Parse(source)
	}
}

func looksLikePlanalto(source string) bool {
	return strings.Contains(strings.ToLower(source), "planalto")
}

func orphanWarnings(orphans []string) []string {
	out := make([]string, 0, len(orphans))
	for _, o := range orphans {
		out = append(out, "unclassified text not placed under any element: "+truncate(o, 80))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
