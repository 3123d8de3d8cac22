package lawimport

import (
	"errors"

	"github.com/jusnote/lawimporter/pkg/acquire"
)

// Sentinel errors for the pipeline-level failure taxonomy (spec §7). The
// acquisition-stage errors are the same values acquire.Client.Fetch
// returns; they are re-exported here so callers checking errors.Is only
// need to import this package's boundary, not acquire's internals.
var (
	ErrNotFound     = acquire.ErrNotFound
	ErrNetwork      = acquire.ErrNetwork
	ErrNoVariant    = acquire.ErrNoVariant
	ErrUnknownAlias = acquire.ErrUnknownAlias

	// ErrNoArticles is returned when both HTML parsers produce zero
	// articles (spec §7, "if the tag parser also produces zero articles,
	// fatal").
	ErrNoArticles = errors.New("no articles recovered from either HTML parser")

	// ErrBadInput covers missing/invalid identifiers at the CLI boundary
	// (spec §7 "Input").
	ErrBadInput = errors.New("missing or invalid law identifier")

	// ErrDecode covers an unreadable local file or undecodable HTML after
	// trying the short list of encodings (spec §7 "Decoding").
	ErrDecode = errors.New("could not decode source as utf-8, latin-1, or cp1252")
)
