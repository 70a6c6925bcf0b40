package export

import (
	"path/filepath"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/reference"
)

// Citations returns the downloadable bibliography text for style.
func Citations(refs []reference.Reference, style citation.Style) string {
	return citation.Bibliography(refs, style)
}

// WriteCitations writes the bibliography to references_<style>.txt in dir
// and returns the file path.
func WriteCitations(dir string, refs []reference.Reference, style citation.Style) (string, error) {
	path := filepath.Join(dir, citation.Filename(style))
	if err := WriteFileAtomic(path, []byte(Citations(refs, style))); err != nil {
		return "", err
	}
	return path, nil
}
