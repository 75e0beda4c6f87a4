// Package ocr is the boundary to the document-text collaborators. The
// analysis core only ever sees plain text; how it was pulled out of a
// document stays behind this interface.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Extractor extracts text content from a document file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Reader routes a file to an extractor by extension: PDFs go through
// pdftotext, .txt and .md are read directly.
type Reader struct {
	pdf Extractor
}

// NewReader creates a Reader. pdftotextPath defaults to "pdftotext".
func NewReader(pdftotextPath string) *Reader {
	return &Reader{pdf: NewPdfToText(pdftotextPath)}
}

// ExtractText reads the document at path as plain text.
func (r *Reader) ExtractText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return r.pdf.ExtractText(ctx, path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", eris.Wrapf(err, "ocr: read %s", path)
		}
		return string(data), nil
	default:
		return "", eris.Errorf("ocr: unsupported document type %q", filepath.Ext(path))
	}
}
