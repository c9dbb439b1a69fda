package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"fromage/internal/format"
)

// Walker finds every file of one resource format under a directory.
type Walker struct {
	format format.Format
}

// NewWalker creates a Walker for files of format f.
func NewWalker(f format.Format) *Walker {
	return &Walker{format: f}
}

// FileEntry represents a discovered file ready for conversion.
type FileEntry struct {
	// Path is the absolute file path.
	Path string
	// Rel is Path relative to the walked root.
	Rel string
}

// Walk discovers all files with the format's extension under root, in lexical
// order. Unreadable subdirectories are logged and skipped.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	ext := w.format.Ext()
	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		entries = append(entries, FileEntry{Path: path, Rel: rel})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Str("format", w.format.String()).Msg("Discovered files")
	return entries, nil
}

// OutputPath maps a discovered file into outRoot, keeping its relative
// location and switching the extension to that of format to.
func OutputPath(entry FileEntry, outRoot string, to format.Format) string {
	rel := strings.TrimSuffix(entry.Rel, filepath.Ext(entry.Rel)) + to.Ext()
	return filepath.Join(outRoot, rel)
}
