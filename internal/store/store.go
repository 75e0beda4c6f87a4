// Package store persists analysis runs and their artifacts. Saving is
// a side effect of the pipeline, not part of the extraction core.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Analysis statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis is one processed document run.
type Analysis struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Status       string          `json:"status"`
	ParsedText   string          `json:"parsed_text,omitempty"`
	AnalysisText string          `json:"analysis_text,omitempty"`
	Record       json.RawMessage `json:"record,omitempty"`
	Error        string          `json:"error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Store is the analysis registry.
type Store interface {
	Migrate(ctx context.Context) error
	CreateAnalysis(ctx context.Context, source string) (*Analysis, error)
	CompleteAnalysis(ctx context.Context, id, parsedText, analysisText string, record json.RawMessage) error
	FailAnalysis(ctx context.Context, id, stage string, cause error) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]Analysis, error)
	Close() error
}
