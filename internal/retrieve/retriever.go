// Package retrieve turns a prospect's website into bounded plain text.
package retrieve

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds one page retrieval end to end.
	DefaultTimeout = 15 * time.Second

	// MaxTextLength caps the extracted text, in characters, to bound prompt size.
	MaxTextLength = 10000
)

// Renderer loads a page and returns its visible body text.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Options configures a Retriever.
type Options struct {
	Timeout time.Duration

	// MaxLength overrides MaxTextLength when > 0.
	MaxLength int
}

// Retriever wraps a Renderer so that retrieval never fails the caller: every
// error becomes empty text and a logged warning.
type Retriever struct {
	renderer  Renderer
	timeout   time.Duration
	maxLength int
	logger    *slog.Logger
}

// New wraps renderer. Zero options fall back to DefaultTimeout and MaxTextLength.
func New(renderer Renderer, opts Options, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = MaxTextLength
	}
	return &Retriever{
		renderer:  renderer,
		timeout:   opts.Timeout,
		maxLength: opts.MaxLength,
		logger:    logger,
	}
}

// Fetch returns the visible text at url, truncated to the configured maximum.
// An empty url returns "" without touching the network.
func (r *Retriever) Fetch(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := r.renderer.Render(fetchCtx, url)
	if err != nil {
		r.logger.Warn(
			"website retrieval failed",
			"url", url,
			"duration", time.Since(start).Round(time.Millisecond),
			"error", err,
		)
		return ""
	}

	text = truncate(strings.TrimSpace(text), r.maxLength)
	r.logger.Debug(
		"website retrieved",
		"url", url,
		"chars", len([]rune(text)),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return text
}

// truncate cuts s to at most max runes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
