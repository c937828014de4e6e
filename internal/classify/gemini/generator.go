// Package gemini implements classify.Generator on top of the Gemini models,
// through either the Gemini API or Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shpitdev/gym-hunter/internal/classify"
	"google.golang.org/genai"
)

type Config struct {
	// APIKey selects the Gemini API backend.
	APIKey string

	// Project and Location select the Vertex AI backend when APIKey is empty.
	Project  string
	Location string

	Model string

	// BaseURL overrides the API base URL. Useful for proxies/testing.
	BaseURL string
}

type Generator struct {
	client *genai.Client
	model  string
}

var _ classify.Generator = (*Generator)(nil)

func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	cc := &genai.ClientConfig{}
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		cc.APIKey = strings.TrimSpace(cfg.APIKey)
		cc.Backend = genai.BackendGeminiAPI
	case strings.TrimSpace(cfg.Project) != "":
		cc.Project = strings.TrimSpace(cfg.Project)
		cc.Location = strings.TrimSpace(cfg.Location)
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT is required")
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
			Temperature:    genai.Ptr[float32](0.1),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty reply")
	}
	return text, nil
}
