package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/extract"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/ocr"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/pipeline"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/store"
	"github.com/vneseyoungster/Financial-Analyzer-Project/pkg/llm"
)

type stubClient struct {
	reachable bool
	replies   map[llm.Purpose]string
}

func (s *stubClient) CheckServer(ctx context.Context) bool { return s.reachable }

func (s *stubClient) Complete(ctx context.Context, spec llm.RequestSpec, opts ...llm.CallOption) (string, error) {
	return s.replies[spec.Purpose], nil
}

func newTestEnv(t *testing.T, client llm.Client) *appEnv {
	t.Helper()

	artifacts, err := store.NewArtifactWriter(t.TempDir())
	require.NoError(t, err)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	p := pipeline.New(client, extract.New(), pipeline.DefaultConfig(),
		pipeline.WithStore(st), pipeline.WithArtifacts(artifacts))

	return &appEnv{Client: client, Pipeline: p, Store: st, Reader: ocr.NewReader("")}
}

func TestHandleProcessDocument_JSON(t *testing.T) {
	client := &stubClient{
		reachable: true,
		replies: map[llm.Purpose]string{
			llm.PurposeParse: "### Overview",
			llm.PurposeAnalysis: "```json\n" +
				`{"Revenue": {"value": 100000, "from": "2022-01-01", "to": "2022-12-31"}}` +
				"\n```",
		},
	}
	env := newTestEnv(t, client)

	body := `{"text": "the document text", "filename": "report.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/api/process-document", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleProcessDocument(env)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success       bool                       `json:"success"`
		ID            string                     `json:"id"`
		FinancialData map[string]json.RawMessage `json:"financial_data"`
		FilePath      string                     `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
	assert.Contains(t, resp.FinancialData, "Revenue")
	assert.Equal(t, "report_financial_analysis.json", resp.FilePath)
}

func TestHandleProcessDocument_MissingText(t *testing.T) {
	env := newTestEnv(t, &stubClient{reachable: true})

	req := httptest.NewRequest(http.MethodPost, "/api/process-document", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleProcessDocument(env)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no document text")
}

func TestHandleProcessDocument_ServerDown(t *testing.T) {
	env := newTestEnv(t, &stubClient{reachable: false})

	req := httptest.NewRequest(http.MethodPost, "/api/process-document", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleProcessDocument(env)(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleProcessDocument_NoStructure(t *testing.T) {
	client := &stubClient{
		reachable: true,
		replies: map[llm.Purpose]string{
			llm.PurposeParse:    "### Overview",
			llm.PurposeAnalysis: "I could not find anything structured in this document.",
		},
	}
	env := newTestEnv(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/process-document", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleProcessDocument(env)(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "extract")
}

func TestHandleGetAnalysis_NotFound(t *testing.T) {
	env := newTestEnv(t, &stubClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/nope", nil)
	rec := httptest.NewRecorder()

	handleGetAnalysis(env)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
