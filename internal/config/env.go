package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overlays environment variables onto c. getenv defaults to os.Getenv.
func ApplyEnv(c *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	e := env(getenv)

	if err := e.secret("GOOGLE_MAPS_API_KEY", &c.Places.APIKey); err != nil {
		return err
	}
	e.str("PLACES_BASE_URL", &c.Places.BaseURL)

	if err := e.secret("GEMINI_API_KEY", &c.Gemini.APIKey); err != nil {
		return err
	}
	e.str("GOOGLE_CLOUD_PROJECT", &c.Gemini.Project)
	e.str("VERTEX_AI_LOCATION", &c.Gemini.Location)
	e.str("GEMINI_MODEL", &c.Gemini.Model)
	e.str("GEMINI_BASE_URL", &c.Gemini.BaseURL)

	e.str("RETRIEVER", &c.Pipeline.Retriever)
	e.str("OUTPUT_DIR", &c.Run.Output.Dir)
	e.str("OUTPUT_FORMAT", &c.Run.Output.Format)

	var err error
	if c.Pipeline.Workers, err = e.intVar("WORKERS", c.Pipeline.Workers); err != nil {
		return err
	}
	if c.Pipeline.MaxInFlight, err = e.intVar("MAX_IN_FLIGHT", c.Pipeline.MaxInFlight); err != nil {
		return err
	}
	if c.Pipeline.SearchInterval, err = e.durationVar("SEARCH_INTERVAL", c.Pipeline.SearchInterval); err != nil {
		return err
	}
	if c.Pipeline.CandidateInterval, err = e.durationVar("CANDIDATE_INTERVAL", c.Pipeline.CandidateInterval); err != nil {
		return err
	}
	if c.Pipeline.FetchTimeout, err = e.durationVar("FETCH_TIMEOUT", c.Pipeline.FetchTimeout); err != nil {
		return err
	}
	if c.Pipeline.RequestTimeout, err = e.durationVar("REQUEST_TIMEOUT", c.Pipeline.RequestTimeout); err != nil {
		return err
	}
	return nil
}

type env func(string) string

func (e env) lookup(varName string) string {
	return strings.TrimSpace(e(varName))
}

func (e env) str(varName string, dst *string) {
	if v := e.lookup(varName); v != "" {
		*dst = v
	}
}

// secret accepts either the value itself or a path to a file holding it, so
// keys can come from mounted secret files.
func (e env) secret(varName string, dst *string) error {
	v := e.lookup(varName)
	if v == "" {
		return nil
	}
	if strings.ContainsAny(v, "\r\n") {
		*dst = v
		return nil
	}
	if fi, err := os.Stat(v); err == nil && !fi.IsDir() {
		b, err := os.ReadFile(v)
		if err != nil {
			return fmt.Errorf("read %s file: %w", varName, err)
		}
		*dst = strings.TrimSpace(string(b))
		return nil
	}
	*dst = v
	return nil
}

func (e env) intVar(varName string, fallback int) (int, error) {
	v := e.lookup(varName)
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func (e env) durationVar(varName string, fallback time.Duration) (time.Duration, error) {
	v := e.lookup(varName)
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

// Bool parses a boolean environment variable; unset means false.
func Bool(varName string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return false, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
