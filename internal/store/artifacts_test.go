package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
)

func TestArtifactWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	w, err := NewArtifactWriter(dir)
	require.NoError(t, err)

	path, err := w.WriteParseResult("report", "overview text")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_results.txt"), path)

	path, err = w.WriteAnalysisResult("report", "analysis text")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_financial_analysis.txt"), path)

	rec := model.FinancialRecord{"Revenue": {Value: model.IntValue(100000)}}
	path, err = w.WriteRecord("report", rec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Revenue"`)
	assert.Contains(t, string(data), `100000`)
}
