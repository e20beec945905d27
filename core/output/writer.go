// Package output handles file naming and writing for exports.
// Filenames are derived from the input file name (notes/todo.md becomes
// todo.html, todo.pdf, ...) or fall back to a fixed default name.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/mdpreview/core"
)

// DefaultName is the base filename used when there is no input file.
const DefaultName = "markdown"

// Writer writes exported documents to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write writes data as name+ext inside the output directory and returns
// the full path.
func (w *Writer) Write(name string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, sanitize(name)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Print implements core.Printer by saving the download under its own
// filename. It is the CLI's print machinery: the saved page is opened and
// printed by the user's browser.
func (w *Writer) Print(doc core.Download) error {
	ext := filepath.Ext(doc.Filename)
	_, err := w.Write(strings.TrimSuffix(doc.Filename, ext), doc.Body, ext)
	return err
}

// NameFor derives a base filename from an input path: the file name
// without directory or extension. Empty or stdin ("-") inputs map to
// DefaultName.
func NameFor(inputPath string) string {
	if inputPath == "" || inputPath == "-" {
		return DefaultName
	}
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if name := sanitize(base); strings.Trim(name, "_") != "" {
		return name
	}
	return DefaultName
}

// sanitize replaces characters other than letters, digits, dot, dash and
// underscore with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9'):
			b.WriteRune(ch)
		case ch == '-' || ch == '_' || ch == '.':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
