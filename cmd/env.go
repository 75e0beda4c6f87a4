package main

import (
	"context"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/extract"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/ocr"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/pipeline"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/store"
	"github.com/vneseyoungster/Financial-Analyzer-Project/pkg/llm"
)

// appEnv wires the pipeline and its collaborators from config. Shared
// by the process and serve commands.
type appEnv struct {
	Client   llm.Client
	Pipeline *pipeline.Pipeline
	Store    store.Store
	Reader   *ocr.Reader
}

type envOptions struct {
	noStore      bool
	strictSchema bool
}

func initEnv(ctx context.Context, opts envOptions) (*appEnv, error) {
	client := llm.NewClient(
		llm.WithBaseURL(cfg.LLM.BaseURL),
		llm.WithModel(cfg.LLM.Model),
	)

	var exOpts []extract.Option
	if opts.strictSchema {
		exOpts = append(exOpts, extract.WithStrictSchema())
	}
	extractor := extract.New(exOpts...)

	artifacts, err := store.NewArtifactWriter(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}

	pOpts := []pipeline.Option{pipeline.WithArtifacts(artifacts)}

	var st store.Store
	if !opts.noStore {
		sq, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := sq.Migrate(ctx); err != nil {
			sq.Close()
			return nil, err
		}
		st = sq
		pOpts = append(pOpts, pipeline.WithStore(st))
	}

	pcfg := pipeline.Config{
		MaxRetries:      cfg.LLM.MaxRetries,
		ParseTimeout:    cfg.LLM.ParseTimeout(),
		AnalysisTimeout: cfg.LLM.AnalysisTimeout(),
	}

	return &appEnv{
		Client:   client,
		Pipeline: pipeline.New(client, extractor, pcfg, pOpts...),
		Store:    st,
		Reader:   ocr.NewReader(cfg.OCR.PdfToTextPath),
	}, nil
}

func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}
