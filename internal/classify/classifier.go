package classify

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shpitdev/gym-hunter/internal/util"
)

// MinTextLength is the shortest website text, in characters, worth a model call.
const MinTextLength = 100

// Generator is the text-generation capability behind the classifier.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier ranks website text with one model call. It never fails: model and
// decoding errors degrade to DefaultVerdict with a diagnostic reason.
type Classifier struct {
	gen    Generator
	logger *slog.Logger
}

func New(gen Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, text string) Verdict {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return DefaultVerdict(ReasonInsufficientContent)
	}

	start := time.Now()
	reply, err := c.gen.Generate(ctx, BuildPrompt(text))
	if err != nil {
		msg := util.RedactSecrets(err.Error())
		c.logger.Warn("classification failed", "duration", time.Since(start).Round(time.Millisecond), "error", msg)
		return DefaultVerdict("classification failed: " + msg)
	}

	v, err := DecodeReply(reply)
	if err != nil {
		c.logger.Warn("unparseable model reply", "error", err, "reply_chars", utf8.RuneCountInString(reply))
		return DefaultVerdict("unparseable model reply: " + err.Error())
	}
	c.logger.Debug("classified", "rank", v.Rank, "duration", time.Since(start).Round(time.Millisecond))
	return v
}
