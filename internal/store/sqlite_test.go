package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/extract"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateAndGetAnalysis(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.CreateAnalysis(ctx, "report.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StatusRunning, a.Status)

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "report.pdf", got.Source)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Nil(t, got.Record)
}

func TestCompleteAnalysis(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.CreateAnalysis(ctx, "report.pdf")
	require.NoError(t, err)

	record := json.RawMessage(`{"Revenue":{"value":100000}}`)
	require.NoError(t, st.CompleteAnalysis(ctx, a.ID, "overview text", "analysis text", record))

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "overview text", got.ParsedText)
	assert.Equal(t, "analysis text", got.AnalysisText)
	assert.JSONEq(t, string(record), string(got.Record))
}

func TestFailAnalysis(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, err := st.CreateAnalysis(ctx, "report.pdf")
	require.NoError(t, err)

	require.NoError(t, st.FailAnalysis(ctx, a.ID, "extract", extract.ErrNoParsableStructure))

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "extract")
	assert.Contains(t, got.Error, "no parsable JSON structure")
}

func TestUpdateMissingAnalysis(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.CompleteAnalysis(ctx, "no-such-id", "", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetMissingAnalysis(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetAnalysis(context.Background(), "no-such-id")
	require.Error(t, err)
}

func TestListAnalyses(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, src := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := st.CreateAnalysis(ctx, src)
		require.NoError(t, err)
	}

	all, err := st.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := st.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
