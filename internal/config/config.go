// Package config assembles run settings from defaults, an optional YAML run
// file and environment variables. Command-line flags are applied by the caller
// before Validate.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	RetrieverBrowser = "browser"
	RetrieverHTTP    = "http"
)

// Output controls where and how the ranked list is written.
type Output struct {
	Dir    string `yaml:"dir" validate:"required"`
	Format string `yaml:"format" validate:"oneof=xlsx csv"`
	Prefix string `yaml:"prefix" validate:"required"`
	// Sheet names the XLSX worksheet. Excel caps sheet names at 31 characters.
	Sheet string `yaml:"sheet" validate:"max=31"`
}

// Run is the part of the configuration that can live in a YAML run file.
type Run struct {
	Queries         []string `yaml:"queries" validate:"min=1,dive,required"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Language        string   `yaml:"language"`
	Output          Output   `yaml:"output"`
}

type Places struct {
	APIKey  string `validate:"required"`
	BaseURL string `validate:"omitempty,url"`
}

// Gemini selects the Gemini API backend when APIKey is set, Vertex AI otherwise.
type Gemini struct {
	APIKey   string `validate:"required_without=Project"`
	Project  string
	Location string
	Model    string `validate:"required"`
	BaseURL  string `validate:"omitempty,url"`
}

type Pipeline struct {
	Workers           int           `validate:"gte=1"`
	MaxInFlight       int           `validate:"gte=0"`
	SearchInterval    time.Duration `validate:"gte=0"`
	CandidateInterval time.Duration `validate:"gte=0"`
	FetchTimeout      time.Duration `validate:"gt=0"`
	RequestTimeout    time.Duration `validate:"gte=0"`
	Retriever         string        `validate:"oneof=browser http"`
}

type Config struct {
	Run      Run
	Places   Places
	Gemini   Gemini
	Pipeline Pipeline
}

var defaultQueries = []string{
	"大阪市北区 24時間ジム",
	"大阪市北区 パーソナルジム",
	"大阪市中央区 24時間ジム",
	"大阪市中央区 パーソナルジム",
}

// Large chains and public facilities that are never prospects.
var defaultExcludeKeywords = []string{
	"エニタイム", "ANYTIME", "RIZAP", "ライザップ",
	"カーブス", "コナミ", "ティップネス", "ゴールドジム",
	"セントラル", "ルネサンス", "公営", "市立", "区立",
	"chocoZAP", "チョコザップ", "JOYFIT", "ジョイフィット",
	"FiT24", "フィットイージー", "Fit Easy",
}

// DefaultRun returns the built-in Osaka gym run.
func DefaultRun() Run {
	return Run{
		Queries:         append([]string(nil), defaultQueries...),
		ExcludeKeywords: append([]string(nil), defaultExcludeKeywords...),
		Language:        "ja",
		Output: Output{
			Dir:    "listcsv",
			Format: "xlsx",
			Prefix: "gym_list",
			Sheet:  "Leads",
		},
	}
}

func Default() Config {
	return Config{
		Run: DefaultRun(),
		Gemini: Gemini{
			Location: "asia-northeast1",
			Model:    "gemini-2.5-flash",
		},
		Pipeline: Pipeline{
			Workers:           4,
			SearchInterval:    500 * time.Millisecond,
			CandidateInterval: time.Second,
			FetchTimeout:      15 * time.Second,
			RequestTimeout:    60 * time.Second,
			Retriever:         RetrieverBrowser,
		},
	}
}

// LoadRunFile overlays the YAML run file at path onto run. Keys absent from
// the file keep their current values; a list present in the file replaces the
// default list.
func LoadRunFile(path string, run *Run) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read run file: %w", err)
	}
	if err := yaml.Unmarshal(b, run); err != nil {
		return fmt.Errorf("parse run file %s: %w", path, err)
	}
	return nil
}

// Load returns the defaults overlaid with the run file at path (if non-empty)
// and then with environment variables.
func Load(path string, getenv func(string) string) (Config, error) {
	c := Default()
	if path != "" {
		if err := LoadRunFile(path, &c.Run); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&c, getenv); err != nil {
		return Config{}, err
	}
	c.Normalize()
	return c, nil
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Normalize drops blank entries from the query and keyword lists and
// lower-cases the enumerated settings.
func (c *Config) Normalize() {
	c.Run.Queries = trimmed(c.Run.Queries)
	c.Run.ExcludeKeywords = trimmed(c.Run.ExcludeKeywords)
	c.Run.Output.Format = strings.ToLower(strings.TrimSpace(c.Run.Output.Format))
	c.Pipeline.Retriever = strings.ToLower(strings.TrimSpace(c.Pipeline.Retriever))
}

func trimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
