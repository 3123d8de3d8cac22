package lawimport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jusnote/lawimporter/pkg/lawmodel"
)

// WriteDocument serializes doc as UTF-8 JSON to path, replacing any
// pre-existing file atomically via write-then-rename (spec §5, "any
// pre-existing file is replaced atomically").
func WriteDocument(doc lawmodel.Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lawimporter-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
