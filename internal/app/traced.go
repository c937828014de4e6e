package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shpitdev/gym-hunter/internal/classify"
	"github.com/shpitdev/gym-hunter/internal/util"
)

// tracedGenerator logs every model request and response at debug level.
type tracedGenerator struct {
	next   classify.Generator
	logger *slog.Logger
	seq    atomic.Int64
}

func newTracedGenerator(next classify.Generator, logger *slog.Logger) *tracedGenerator {
	return &tracedGenerator{next: next, logger: logger}
}

func (t *tracedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	n := t.seq.Add(1)

	deadlineIn := "none"
	if d, ok := ctx.Deadline(); ok {
		deadlineIn = time.Until(d).Round(time.Millisecond).String()
	}
	t.logger.Debug("classify request", "seq", n, "prompt_chars", len([]rune(prompt)), "deadline_in", deadlineIn)

	start := time.Now()
	reply, err := t.next.Generate(ctx, prompt)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		t.logger.Debug(
			"classify response",
			"seq", n,
			"duration", elapsed,
			"status", "error",
			"error", util.RedactSecrets(err.Error()),
		)
		return reply, err
	}
	t.logger.Debug("classify response", "seq", n, "duration", elapsed, "status", "ok", "reply_chars", len([]rune(reply)))
	return reply, nil
}
