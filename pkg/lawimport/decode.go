package lawimport

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeLocalHTML reads path and decodes it to a UTF-8 string, trying
// utf-8, latin-1, and cp1252 in that order (spec §7 "Decoding"). utf-8 is
// accepted as-is when it already validates; the other two are explicit
// transcodes since neither rejects arbitrary byte sequences the way a
// true decoder would.
func decodeLocalHTML(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if utf8.Valid(raw) {
		decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
		if err == nil {
			return string(decoded), nil
		}
	}

	if text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(text), nil
	}

	if text, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(text), nil
	}

	return "", fmt.Errorf("%w: %s", ErrDecode, path)
}
