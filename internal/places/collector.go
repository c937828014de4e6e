package places

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	// Language is passed to every text search (e.g. "ja").
	Language string

	// Interval is the fixed pacing delay between provider calls. It applies to
	// search and details calls alike, whether or not the previous call failed.
	// Set to <=0 to disable.
	Interval time.Duration

	ExcludeKeywords []string
}

// Collector turns search queries into distinct, enriched candidates.
type Collector struct {
	searcher Searcher
	filter   ExcludeFilter
	language string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewCollector returns a Collector over searcher. A nil logger uses slog.Default().
func NewCollector(searcher Searcher, opts CollectorOptions, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return &Collector{
		searcher: searcher,
		filter:   NewExcludeFilter(opts.ExcludeKeywords),
		language: strings.TrimSpace(opts.Language),
		limiter:  limiter,
		logger:   logger,
	}
}

// Collect runs one search per query and returns candidates in first-discovery order.
//
// Excluded names are dropped before any details call. A place id seen earlier in
// the run is skipped without re-fetching details. A failed search is logged and
// contributes no candidates.
func (c *Collector) Collect(ctx context.Context, queries []string) ([]Candidate, error) {
	seen := make(map[string]struct{})
	var out []Candidate

	for _, raw := range queries {
		query := strings.TrimSpace(raw)
		if query == "" {
			continue
		}
		if err := c.pace(ctx); err != nil {
			return out, err
		}

		start := time.Now()
		hits, err := c.searcher.Search(ctx, query, c.language)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.logger.Warn("place search failed", "query", query, "error", err)
			continue
		}

		added := 0
		for _, hit := range hits {
			id := strings.TrimSpace(hit.ID)
			if id == "" {
				continue
			}
			if kw, excluded := c.filter.Match(hit.Name); excluded {
				c.logger.Info("excluded place", "query", query, "name", hit.Name, "keyword", kw)
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			cand, err := c.enrich(ctx, hit)
			if err != nil {
				return out, err
			}
			out = append(out, cand)
			added++
		}
		c.logger.Info(
			"query collected",
			"query", query,
			"hits", len(hits),
			"added", added,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
	return out, nil
}

func (c *Collector) enrich(ctx context.Context, hit PlaceSummary) (Candidate, error) {
	cand := Candidate{ID: strings.TrimSpace(hit.ID), Name: strings.TrimSpace(hit.Name)}
	if err := c.pace(ctx); err != nil {
		return cand, err
	}

	d, err := c.searcher.Details(ctx, cand.ID)
	if err != nil {
		if ctx.Err() != nil {
			return cand, ctx.Err()
		}
		c.logger.Warn("place details failed", "id", cand.ID, "name", cand.Name, "error", err)
		return cand, nil
	}

	if name := strings.TrimSpace(d.Name); name != "" {
		cand.Name = name
	}
	cand.Address = strings.TrimSpace(d.Address)
	cand.Phone = strings.TrimSpace(d.Phone)
	cand.Website = strings.TrimSpace(d.Website)
	cand.Rating = d.Rating
	return cand, nil
}

func (c *Collector) pace(ctx context.Context) error {
	if c.limiter == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}
