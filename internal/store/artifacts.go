package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
)

// ArtifactWriter saves the intermediate and final outputs of a run as
// plain files next to each other: the parse reply, the analysis reply,
// and the extracted record.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates the output directory if needed.
func NewArtifactWriter(dir string) (*ArtifactWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "artifacts: create %s", dir)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// WriteParseResult saves the markdown overview as <base>_results.txt.
func (w *ArtifactWriter) WriteParseResult(base, text string) (string, error) {
	return w.write(base+"_results.txt", []byte(text))
}

// WriteAnalysisResult saves the raw analysis reply as
// <base>_financial_analysis.txt.
func (w *ArtifactWriter) WriteAnalysisResult(base, text string) (string, error) {
	return w.write(base+"_financial_analysis.txt", []byte(text))
}

// WriteRecord saves the extracted record, indented, as
// <base>_financial_analysis.json.
func (w *ArtifactWriter) WriteRecord(base string, rec model.FinancialRecord) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "artifacts: marshal record")
	}
	return w.write(base+"_financial_analysis.json", data)
}

func (w *ArtifactWriter) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "artifacts: write %s", name)
	}
	return path, nil
}
