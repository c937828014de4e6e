// Package pipeline runs the collect, retrieve, classify and rank stages for one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shpitdev/gym-hunter/internal/classify"
	"github.com/shpitdev/gym-hunter/internal/places"
	"github.com/shpitdev/gym-hunter/internal/worker"
)

// ReasonCancelled marks a candidate whose run was cancelled before it could be classified.
const ReasonCancelled = "cancelled before classification"

// Collector yields deduplicated candidates for a set of queries.
type Collector interface {
	Collect(ctx context.Context, queries []string) ([]places.Candidate, error)
}

// Retriever returns a page's visible text, or "" when it cannot.
type Retriever interface {
	Fetch(ctx context.Context, url string) string
}

// Classifier turns page text into a verdict; it never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) classify.Verdict
}

// Options tunes concurrency, pacing and timeouts for a run.
type Options struct {
	// Workers is the number of candidates processed concurrently.
	Workers int

	// MaxInFlight caps simultaneous retrieval and classification calls across
	// all workers. Defaults to Workers.
	MaxInFlight int

	// CandidateInterval is the pacing delay between candidate starts. Set to <=0 to disable.
	CandidateInterval time.Duration

	// RequestTimeout bounds one classification call. Set to <=0 to disable.
	RequestTimeout time.Duration

	// Now stamps records; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = o.Workers
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Pipeline runs collection, retrieval and classification for one set of queries.
type Pipeline struct {
	collector  Collector
	retriever  Retriever
	classifier Classifier
	opts       Options
	sem        *semaphore.Weighted
	logger     *slog.Logger
}

// New returns a Pipeline. A nil logger uses slog.Default().
func New(collector Collector, retriever Retriever, classifier Classifier, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	return &Pipeline{
		collector:  collector,
		retriever:  retriever,
		classifier: classifier,
		opts:       opts,
		sem:        semaphore.NewWeighted(int64(opts.MaxInFlight)),
		logger:     logger,
	}
}

// Run collects candidates for queries, classifies each one and returns the
// records sorted by rank, ties in discovery order.
//
// A collection failure returns nil records. If ctx is cancelled while
// candidates are being processed, Run returns the sorted records that completed
// (possibly none, never nil) together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, queries []string) ([]Record, error) {
	collectStart := time.Now()
	candidates, err := p.collector.Collect(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("collect candidates: %w", err)
	}
	p.logger.Info(
		"collection complete",
		"queries", len(queries),
		"candidates", len(candidates),
		"duration", time.Since(collectStart).Round(time.Millisecond),
	)

	total := len(candidates)
	completed := 0
	classifyStart := time.Now()
	results, runErr := worker.ProcessAllWithCallback(
		ctx,
		candidates,
		p.process,
		func(res worker.Result[places.Candidate, Record]) error {
			completed++
			p.logger.Info(
				"candidate classified",
				"name", res.Output.Name,
				"rank", res.Output.Rank,
				"reason", truncateRunes(res.Output.Reason, 50),
				"completed", fmt.Sprintf("%d/%d", completed, total),
			)
			return nil
		},
		worker.Options{Workers: p.opts.Workers, Interval: p.opts.CandidateInterval},
	)

	records := make([]Record, 0, len(results))
	for _, res := range results {
		records = append(records, res.Output)
	}
	SortByRank(records)

	p.logger.Info(
		"classification complete",
		"records", len(records),
		"duration", time.Since(classifyStart).Round(time.Millisecond),
	)
	return records, runErr
}

func (p *Pipeline) process(ctx context.Context, cand places.Candidate) (Record, error) {
	text := ""
	if cand.Website != "" {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return Merge(cand, classify.DefaultVerdict(ReasonCancelled), p.opts.Now()), nil
		}
		text = p.retriever.Fetch(ctx, cand.Website)
		p.sem.Release(1)
	}
	retrievedAt := p.opts.Now()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Merge(cand, classify.DefaultVerdict(ReasonCancelled), retrievedAt), nil
	}
	defer p.sem.Release(1)

	classifyCtx := ctx
	if p.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		classifyCtx, cancel = context.WithTimeout(ctx, p.opts.RequestTimeout)
		defer cancel()
	}
	return Merge(cand, p.classifier.Classify(classifyCtx, text), retrievedAt), nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
