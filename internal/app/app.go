// Package app wires one lead-generation run: collect, classify, rank and export.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shpitdev/gym-hunter/internal/classify"
	"github.com/shpitdev/gym-hunter/internal/classify/gemini"
	"github.com/shpitdev/gym-hunter/internal/config"
	"github.com/shpitdev/gym-hunter/internal/export"
	"github.com/shpitdev/gym-hunter/internal/pipeline"
	"github.com/shpitdev/gym-hunter/internal/places"
	"github.com/shpitdev/gym-hunter/internal/places/googlemaps"
	"github.com/shpitdev/gym-hunter/internal/retrieve"
	"github.com/shpitdev/gym-hunter/internal/version"
)

// Deps are the external collaborators of a run.
type Deps struct {
	Searcher  places.Searcher
	Renderer  retrieve.Renderer
	Generator classify.Generator

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result describes a finished (or interrupted) run.
type Result struct {
	RunID   string
	Path    string
	Records []pipeline.Record
	Summary map[classify.Rank]int
}

// UserAgent identifies the tool to the sites it retrieves.
func UserAgent() string {
	return "gym-hunter/" + version.Current
}

// NewDeps builds the production collaborators from cfg.
func NewDeps(ctx context.Context, cfg config.Config) (Deps, error) {
	searcher, err := googlemaps.New(googlemaps.Config{
		APIKey:          cfg.Places.APIKey,
		BaseURL:         cfg.Places.BaseURL,
		DetailsLanguage: cfg.Run.Language,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("places client: %w", err)
	}

	generator, err := gemini.New(ctx, gemini.Config{
		APIKey:   cfg.Gemini.APIKey,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
		Model:    cfg.Gemini.Model,
		BaseURL:  cfg.Gemini.BaseURL,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("gemini client: %w", err)
	}

	var renderer retrieve.Renderer
	switch cfg.Pipeline.Retriever {
	case config.RetrieverHTTP:
		renderer = retrieve.HTTPRenderer{
			Client:    &http.Client{Timeout: cfg.Pipeline.FetchTimeout},
			UserAgent: UserAgent(),
		}
	default:
		renderer = retrieve.BrowserRenderer{
			UserAgent: UserAgent(),
			Settle:    2 * time.Second,
		}
	}

	return Deps{Searcher: searcher, Renderer: renderer, Generator: generator}, nil
}

// Run executes one run and writes the ranked list under cfg.Run.Output.
//
// When ctx is cancelled after collection, the records classified so far are
// still exported and Run returns them together with ctx.Err().
func Run(ctx context.Context, cfg config.Config, deps Deps, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	res := Result{RunID: uuid.NewString()}
	logger = logger.With("run", res.RunID)
	runStart := time.Now()

	exporter, err := export.ForFormat(cfg.Run.Output.Format, cfg.Run.Output.Sheet)
	if err != nil {
		return res, err
	}

	logger.Info(
		"run start",
		"version", version.Current,
		"queries", len(cfg.Run.Queries),
		"exclude_keywords", len(cfg.Run.ExcludeKeywords),
		"workers", cfg.Pipeline.Workers,
		"max_in_flight", cfg.Pipeline.MaxInFlight,
		"retriever", cfg.Pipeline.Retriever,
		"format", exporter.Ext(),
	)

	collector := places.NewCollector(deps.Searcher, places.CollectorOptions{
		Language:        cfg.Run.Language,
		Interval:        cfg.Pipeline.SearchInterval,
		ExcludeKeywords: cfg.Run.ExcludeKeywords,
	}, logger)
	retriever := retrieve.New(deps.Renderer, retrieve.Options{Timeout: cfg.Pipeline.FetchTimeout}, logger)
	classifier := classify.New(newTracedGenerator(deps.Generator, logger), logger)

	p := pipeline.New(collector, retriever, classifier, pipeline.Options{
		Workers:           cfg.Pipeline.Workers,
		MaxInFlight:       cfg.Pipeline.MaxInFlight,
		CandidateInterval: cfg.Pipeline.CandidateInterval,
		RequestTimeout:    cfg.Pipeline.RequestTimeout,
		Now:               now,
	}, logger)

	records, runErr := p.Run(ctx, cfg.Run.Queries)
	if records == nil && runErr != nil {
		return res, runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted, exporting partial results", "records", len(records), "error", runErr)
	}
	res.Records = records
	res.Summary = pipeline.Summary(records)

	path, err := export.WriteFile(exporter, cfg.Run.Output.Dir, cfg.Run.Output.Prefix, now(), records)
	if err != nil {
		return res, fmt.Errorf("export: %w", err)
	}
	res.Path = path

	logger.Info(
		"run complete",
		"output", path,
		"records", len(records),
		"S", res.Summary[classify.RankS],
		"A", res.Summary[classify.RankA],
		"B", res.Summary[classify.RankB],
		"C", res.Summary[classify.RankC],
		"duration", time.Since(runStart).Round(time.Millisecond),
	)
	return res, runErr
}
