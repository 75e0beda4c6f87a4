package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// PdfToText extracts text from PDFs by shelling out to the pdftotext
// CLI tool. The -layout flag keeps tabular statements readable, which
// matters for income statements.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns its
// stdout. Scanned PDFs with no text layer come back empty from
// pdftotext; that is reported as an error rather than handed to the
// completion service as a blank document.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	text := stdout.String()
	if strings.TrimSpace(text) == "" {
		return "", eris.Errorf("ocr: %s has no extractable text layer", pdfPath)
	}

	return text, nil
}
