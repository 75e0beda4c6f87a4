package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte("Revenue: 100,000"), 0o644))

	text, err := NewReader("").ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Revenue: 100,000", text)
}

func TestReader_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.md")
	require.NoError(t, os.WriteFile(path, []byte("# Income Statement"), 0o644))

	text, err := NewReader("").ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Income Statement", text)
}

func TestReader_UnsupportedType(t *testing.T) {
	_, err := NewReader("").ExtractText(context.Background(), "scan.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document type")
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader("").ExtractText(context.Background(), "missing.txt")
	require.Error(t, err)
}

func TestPdfToText_MissingBinary(t *testing.T) {
	p := NewPdfToText(filepath.Join(t.TempDir(), "no-such-binary"))
	_, err := p.ExtractText(context.Background(), "doc.pdf")
	require.Error(t, err)
}
