// Package fs provides file-based output for product reports.
package fs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rivalhq/rival"
)

// SafeFileName converts a product name into a portable file name
// fragment. Spaces and path separators are replaced with underscores.
func SafeFileName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

// FormatProduct renders a product record as indented JSON. HTML escaping
// is disabled so URLs and non-ASCII content render literally.
func FormatProduct(product *rival.Product) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(product); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer writes product reports as JSON files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteProduct writes a product report to disk and returns the path of
// the written file. When path is empty the file is named after the
// product under the writer's base directory.
func (w *Writer) WriteProduct(product *rival.Product, path string) (string, error) {
	if err := product.Validate(); err != nil {
		return "", err
	}

	if path == "" {
		path = filepath.Join(w.baseDir, "product_"+SafeFileName(product.ProductName)+".json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	data, err := FormatProduct(product)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
