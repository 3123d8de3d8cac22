package acquire

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// builtinAliases seeds the well-known short names the CLI's --lei flag
// accepts, matching LEIS_CONHECIDAS in the Python predecessor. This is the
// small bundled table spec §4.3 calls out as the "best-effort alias
// table" for local HTML input; the full selection-by-alias lookup system
// is external configuration and out of this component's scope.
var builtinAliases = map[string]string{
	"codigo-penal": "urn:lex:br:federal:decreto.lei:1940-12-07;2848",
	"codigo-civil": "urn:lex:br:federal:lei:2002-01-10;10406",
	"clt":          "urn:lex:br:federal:decreto.lei:1943-05-01;5452",
	"cdc":          "urn:lex:br:federal:lei:1990-09-11;8078",
	"eca":          "urn:lex:br:federal:lei:1990-07-13;8069",
	"ctb":          "urn:lex:br:federal:lei:1997-09-23;9503",
	"constituicao": "urn:lex:br:federal:constituicao:1988-10-05;1988",
}

var aliases = cloneAliases(builtinAliases)

func cloneAliases(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// LookupAlias resolves a short law name to its canonical URN.
func LookupAlias(name string) (string, bool) {
	urn, ok := aliases[strings.ToLower(name)]
	return urn, ok
}

// aliasFile is the on-disk shape of an alias override/extension file.
type aliasFile struct {
	Leis map[string]string `yaml:"leis"`
}

// LoadAliasFile merges additional alias→URN mappings from a YAML file into
// the in-memory alias table, on top of the built-in seed table. Existing
// entries with the same key are overridden.
func LoadAliasFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading alias file %s: %w", path, err)
	}

	var parsed aliasFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing alias file %s: %w", path, err)
	}

	for name, urn := range parsed.Leis {
		aliases[strings.ToLower(name)] = urn
	}
	return nil
}
