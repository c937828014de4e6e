package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing_model", cfg: Config{APIKey: "k"}},
		{name: "missing_credentials", cfg: Config{Model: "gemini-2.5-flash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg); err == nil {
				t.Fatalf("expected error for %+v", tt.cfg)
			}
		})
	}
}

func fakeGeminiServer(t *testing.T, reply string, prompts chan<- string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.Unmarshal(body, &req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompts <- req.Contents[0].Parts[0].Text
		} else {
			prompts <- ""
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": reply}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerate_ReturnsReplyText(t *testing.T) {
	prompts := make(chan string, 1)
	ts := fakeGeminiServer(t, "```json\n{\"rank\":\"S\"}\n```", prompts)

	g, err := New(context.Background(), Config{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if g.Model() != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", g.Model())
	}

	got, err := g.Generate(context.Background(), "rubric\nwebsite text")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "```json\n{\"rank\":\"S\"}\n```" {
		t.Fatalf("unexpected reply %q", got)
	}
	if p := <-prompts; p != "rubric\nwebsite text" {
		t.Fatalf("unexpected prompt sent: %q", p)
	}
}

func TestGenerate_EmptyReplyIsError(t *testing.T) {
	ts := fakeGeminiServer(t, "   ", make(chan string, 1))

	g, err := New(context.Background(), Config{APIKey: "test-key", Model: "gemini-2.5-flash", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := g.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for empty reply")
	}
}
