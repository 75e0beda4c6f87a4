// Package pipeline orchestrates one document run: reachability check,
// the two completion calls, extraction, and persistence. Each step is
// sequential plumbing; the interesting failure handling lives in
// pkg/llm and internal/extract.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/extract"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/store"
	"github.com/vneseyoungster/Financial-Analyzer-Project/pkg/llm"
)

// ErrServerUnavailable is returned when the completion server fails the
// reachability check before any expensive work is started.
var ErrServerUnavailable = eris.New("pipeline: completion server is not reachable")

// StageError attributes a failure to the pipeline stage that produced
// it, so callers can surface which step broke instead of a generic fault.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: %s stage failed: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Config bounds the two completion calls of a run. The parse call gets
// a shorter budget than the analysis call.
type Config struct {
	MaxRetries      int
	ParseTimeout    time.Duration
	AnalysisTimeout time.Duration
}

// DefaultConfig mirrors the budgets used by the original workflow.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		ParseTimeout:    300 * time.Second,
		AnalysisTimeout: 360 * time.Second,
	}
}

// Result is the outcome of one successful run.
type Result struct {
	ID           string
	Source       string
	ParsedText   string
	AnalysisText string
	Record       model.FinancialRecord
	RecordPath   string
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithStore records runs in an analysis registry.
func WithStore(s store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithArtifacts saves the raw replies and the extracted record as files.
func WithArtifacts(w *store.ArtifactWriter) Option {
	return func(p *Pipeline) { p.artifacts = w }
}

// Pipeline runs documents through parsing, analysis, and extraction.
type Pipeline struct {
	llm       llm.Client
	extractor *extract.Extractor
	cfg       Config
	store     store.Store
	artifacts *store.ArtifactWriter
}

// New creates a pipeline around a completion client and an extractor.
func New(client llm.Client, extractor *extract.Extractor, cfg Config, opts ...Option) *Pipeline {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	p := &Pipeline{llm: client, extractor: extractor, cfg: cfg}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes one document's text end to end. source is a display
// name (usually the uploaded file name) used for artifacts and the
// registry; it carries no path semantics beyond its base name.
func (p *Pipeline) Run(ctx context.Context, source, text string) (*Result, error) {
	if !p.llm.CheckServer(ctx) {
		return nil, ErrServerUnavailable
	}

	id := uuid.New().String()
	if p.store != nil {
		a, err := p.store.CreateAnalysis(ctx, source)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: register run")
		}
		id = a.ID
	}

	zap.L().Info("pipeline run started",
		zap.String("id", id),
		zap.String("source", source),
		zap.Int("text_len", len(text)),
	)

	// The two completion calls are independent: each owns its retry
	// state, so they run concurrently against the same server.
	var parsedText, analysisText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := p.llm.Complete(gctx, llm.ParseRequest(text),
			llm.WithMaxRetries(p.cfg.MaxRetries), llm.WithTimeout(p.cfg.ParseTimeout))
		if err != nil {
			return &StageError{Stage: "parse", Err: err}
		}
		parsedText = out
		return nil
	})
	g.Go(func() error {
		out, err := p.llm.Complete(gctx, llm.AnalysisRequest(text),
			llm.WithMaxRetries(p.cfg.MaxRetries), llm.WithTimeout(p.cfg.AnalysisTimeout))
		if err != nil {
			return &StageError{Stage: "analysis", Err: err}
		}
		analysisText = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, p.fail(ctx, id, err)
	}

	record, err := p.extractor.Extract(analysisText)
	if err != nil {
		return nil, p.fail(ctx, id, &StageError{Stage: "extract", Err: err})
	}

	res := &Result{
		ID:           id,
		Source:       source,
		ParsedText:   parsedText,
		AnalysisText: analysisText,
		Record:       record,
	}

	if p.artifacts != nil {
		base := artifactBase(source)
		if _, err := p.artifacts.WriteParseResult(base, parsedText); err != nil {
			return nil, p.fail(ctx, id, &StageError{Stage: "persist", Err: err})
		}
		if _, err := p.artifacts.WriteAnalysisResult(base, analysisText); err != nil {
			return nil, p.fail(ctx, id, &StageError{Stage: "persist", Err: err})
		}
		path, err := p.artifacts.WriteRecord(base, record)
		if err != nil {
			return nil, p.fail(ctx, id, &StageError{Stage: "persist", Err: err})
		}
		res.RecordPath = path
	}

	if p.store != nil {
		recJSON, err := json.Marshal(record)
		if err != nil {
			return nil, p.fail(ctx, id, &StageError{Stage: "persist", Err: err})
		}
		if err := p.store.CompleteAnalysis(ctx, id, parsedText, analysisText, recJSON); err != nil {
			return nil, eris.Wrap(err, "pipeline: record result")
		}
	}

	zap.L().Info("pipeline run completed",
		zap.String("id", id),
		zap.Int("fields", len(record)),
	)
	return res, nil
}

func (p *Pipeline) fail(ctx context.Context, id string, cause error) error {
	stage := "pipeline"
	var se *StageError
	if errors.As(cause, &se) {
		stage = se.Stage
	}
	zap.L().Error("pipeline run failed",
		zap.String("id", id),
		zap.String("stage", stage),
		zap.Error(cause),
	)
	if p.store != nil {
		if err := p.store.FailAnalysis(ctx, id, stage, cause); err != nil {
			zap.L().Warn("recording run failure failed", zap.String("id", id), zap.Error(err))
		}
	}
	return cause
}

func artifactBase(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		return "document"
	}
	return base
}
