//go:build gemini_e2e

package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shpitdev/gym-hunter/internal/app"
	"github.com/shpitdev/gym-hunter/internal/classify"
	"github.com/shpitdev/gym-hunter/internal/classify/gemini"
)

func TestRun_RealGemini_EndToEnd(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	project := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if apiKey == "" && project == "" {
		t.Fatalf("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT is required for gemini_e2e tests")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	ctx := context.Background()
	gen, err := gemini.New(ctx, gemini.Config{
		APIKey:   apiKey,
		Project:  project,
		Location: os.Getenv("VERTEX_AI_LOCATION"),
		Model:    model,
		BaseURL:  os.Getenv("GEMINI_BASE_URL"),
	})
	if err != nil {
		t.Fatalf("create gemini generator: %v", err)
	}

	// Synthetic sites only (public repo); Places and the websites stay local.
	fx := newFixture(t, &ruleGenerator{})
	fx.deps.Generator = gen
	fx.cfg.Pipeline.Workers = 1
	fx.cfg.Pipeline.RequestTimeout = 60 * time.Second
	fx.cfg.Run.Output.Format = "xlsx"
	if dir := os.Getenv("GEMINI_E2E_ARTIFACT_DIR"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create GEMINI_E2E_ARTIFACT_DIR: %v", err)
		}
		fx.cfg.Run.Output.Dir = dir
	}

	res, err := app.Run(ctx, fx.cfg, fx.deps, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if filepath.Ext(res.Path) != ".xlsx" {
		t.Fatalf("unexpected output path: %q", res.Path)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	for _, rec := range res.Records {
		if _, ok := classify.ParseRank(string(rec.Rank)); !ok {
			t.Fatalf("record %q has invalid rank %q", rec.Name, rec.Rank)
		}
		if strings.HasPrefix(rec.Reason, "classification failed") || strings.HasPrefix(rec.Reason, "unparseable model reply") {
			t.Fatalf("record %q degraded: %s", rec.Name, rec.Reason)
		}
	}
	if res.Records[0].Name != "Local Fit Studio" {
		t.Logf("model did not rank the unmanned gym first: %+v", res.Records)
	}
}
