package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://192.168.1.119:1234", cfg.LLM.BaseURL)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 300*time.Second, cfg.LLM.ParseTimeout())
	assert.Equal(t, 360*time.Second, cfg.LLM.AnalysisTimeout())
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "analyses.db", cfg.Store.Path)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
llm:
  base_url: http://localhost:8080
  max_retries: 5
  parse_timeout_secs: 120
server:
  port: 9000
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.LLM.BaseURL)
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 120*time.Second, cfg.LLM.ParseTimeout())
	// Unset keys keep their defaults.
	assert.Equal(t, 360*time.Second, cfg.LLM.AnalysisTimeout())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANALYZER_LLM_BASE_URL", "http://env-host:1234")
	t.Setenv("ANALYZER_LLM_MAX_RETRIES", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env-host:1234", cfg.LLM.BaseURL)
	assert.Equal(t, 7, cfg.LLM.MaxRetries)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
