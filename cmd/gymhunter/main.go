package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shpitdev/gym-hunter/internal/app"
	"github.com/shpitdev/gym-hunter/internal/config"
	"github.com/shpitdev/gym-hunter/internal/util"
	"github.com/shpitdev/gym-hunter/internal/version"
)

func main() {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
	case "version":
		_, _ = fmt.Fprintln(os.Stdout, version.Current)
	case "run":
		code = runCmd(ctx, os.Args[2:])
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		code = 2
	}
	stop()
	os.Exit(code)
}

func runCmd(ctx context.Context, args []string) int {
	base, err := config.Load("", nil)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var f runFlags
	f.register(fs, base)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(f.configPath, nil)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}
	fs.Visit(func(fl *flag.Flag) { f.apply(fl.Name, &cfg) })
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	verbose := f.verbose
	if !verbose {
		if verbose, err = config.Bool("VERBOSE"); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", err)
			return 2
		}
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	deps, err := app.NewDeps(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	res, err := app.Run(ctx, cfg, deps, logger)
	if res.Path != "" {
		_, _ = fmt.Fprintf(os.Stdout, "wrote %d records to %s\n", len(res.Records), res.Path)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "run failed: %s\n", util.RedactSecrets(err.Error()))
		return 1
	}
	return 0
}

// runFlags mirror the config fields that can be set on the command line.
// Only flags given explicitly override the run file and environment.
type runFlags struct {
	configPath string
	verbose    bool

	queries  listFlag
	exclude  listFlag
	language string

	outputDir    string
	outputFormat string
	outputPrefix string
	outputSheet  string

	workers           int
	maxInFlight       int
	searchInterval    time.Duration
	candidateInterval time.Duration
	fetchTimeout      time.Duration
	requestTimeout    time.Duration
	retriever         string

	placesBaseURL string
	geminiModel   string
	geminiBaseURL string
}

func (f *runFlags) register(fs *flag.FlagSet, base config.Config) {
	fs.StringVar(&f.configPath, "config", "", "YAML run file (queries, exclude_keywords, language, output)")
	fs.BoolVar(&f.verbose, "verbose", false, "Log at debug level, including model calls (env: VERBOSE)")

	fs.Var(&f.queries, "query", "Search query; repeat for several (default: built-in Osaka queries)")
	fs.Var(&f.exclude, "exclude", "Comma-separated chain keywords to drop (default: built-in list)")
	fs.StringVar(&f.language, "language", base.Run.Language, "Search result language")

	fs.StringVar(&f.outputDir, "output-dir", base.Run.Output.Dir, "Output directory (env: OUTPUT_DIR)")
	fs.StringVar(&f.outputFormat, "format", base.Run.Output.Format, "Output format: xlsx or csv (env: OUTPUT_FORMAT)")
	fs.StringVar(&f.outputPrefix, "prefix", base.Run.Output.Prefix, "Output file name prefix")
	fs.StringVar(&f.outputSheet, "sheet", base.Run.Output.Sheet, "XLSX worksheet name")

	fs.IntVar(&f.workers, "workers", base.Pipeline.Workers, "Candidates processed concurrently (env: WORKERS)")
	fs.IntVar(&f.maxInFlight, "max-in-flight", base.Pipeline.MaxInFlight, "Max simultaneous retrieval/model calls, 0 means workers (env: MAX_IN_FLIGHT)")
	fs.DurationVar(&f.searchInterval, "search-interval", base.Pipeline.SearchInterval, "Delay between Places API calls (env: SEARCH_INTERVAL)")
	fs.DurationVar(&f.candidateInterval, "candidate-interval", base.Pipeline.CandidateInterval, "Delay between candidate starts (env: CANDIDATE_INTERVAL)")
	fs.DurationVar(&f.fetchTimeout, "fetch-timeout", base.Pipeline.FetchTimeout, "Per-page retrieval timeout (env: FETCH_TIMEOUT)")
	fs.DurationVar(&f.requestTimeout, "request-timeout", base.Pipeline.RequestTimeout, "Per-classification model timeout, 0 disables (env: REQUEST_TIMEOUT)")
	fs.StringVar(&f.retriever, "retriever", base.Pipeline.Retriever, "Page retriever: browser or http (env: RETRIEVER)")

	fs.StringVar(&f.placesBaseURL, "places-base-url", base.Places.BaseURL, "Places API base URL override (env: PLACES_BASE_URL)")
	fs.StringVar(&f.geminiModel, "gemini-model", base.Gemini.Model, "Gemini model name (env: GEMINI_MODEL)")
	fs.StringVar(&f.geminiBaseURL, "gemini-base-url", base.Gemini.BaseURL, "Gemini API base URL override (env: GEMINI_BASE_URL)")
}

func (f *runFlags) apply(name string, cfg *config.Config) {
	switch name {
	case "query":
		cfg.Run.Queries = f.queries
	case "exclude":
		cfg.Run.ExcludeKeywords = f.exclude
	case "language":
		cfg.Run.Language = f.language
	case "output-dir":
		cfg.Run.Output.Dir = f.outputDir
	case "format":
		cfg.Run.Output.Format = f.outputFormat
	case "prefix":
		cfg.Run.Output.Prefix = f.outputPrefix
	case "sheet":
		cfg.Run.Output.Sheet = f.outputSheet
	case "workers":
		cfg.Pipeline.Workers = f.workers
	case "max-in-flight":
		cfg.Pipeline.MaxInFlight = f.maxInFlight
	case "search-interval":
		cfg.Pipeline.SearchInterval = f.searchInterval
	case "candidate-interval":
		cfg.Pipeline.CandidateInterval = f.candidateInterval
	case "fetch-timeout":
		cfg.Pipeline.FetchTimeout = f.fetchTimeout
	case "request-timeout":
		cfg.Pipeline.RequestTimeout = f.requestTimeout
	case "retriever":
		cfg.Pipeline.Retriever = f.retriever
	case "places-base-url":
		cfg.Places.BaseURL = f.placesBaseURL
	case "gemini-model":
		cfg.Gemini.Model = f.geminiModel
	case "gemini-base-url":
		cfg.Gemini.BaseURL = f.geminiBaseURL
	}
}

// listFlag collects repeated or comma-separated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

func usage(w *os.File) {
	_, _ = fmt.Fprintf(w, `gymhunter: find and rank independent gyms as sales prospects

Usage:
  gymhunter <command> [flags]

Commands:
  run      Search, classify and export a ranked lead list
  version  Print the version
  help     Show this help

Examples:
  gymhunter run
  gymhunter run -config osaka.yaml -format csv
  gymhunter run -query "大阪市北区 24時間ジム" -retriever http

Settings are applied in order: built-in defaults, -config file, environment
(a .env file in the working directory is loaded first), then explicit flags.

Environment (Places):
  GOOGLE_MAPS_API_KEY   Places API key (required)
  PLACES_BASE_URL       Optional base URL override (proxies/testing)

Environment (Gemini):
  GEMINI_API_KEY        Gemini API key; selects the Gemini API backend
  GOOGLE_CLOUD_PROJECT  Vertex AI project, used when GEMINI_API_KEY is unset
  VERTEX_AI_LOCATION    Vertex AI region (default asia-northeast1)
  GEMINI_MODEL          Model name (default gemini-2.5-flash)
  GEMINI_BASE_URL       Optional base URL override (proxies/testing)

Environment (run):
  WORKERS, MAX_IN_FLIGHT, SEARCH_INTERVAL, CANDIDATE_INTERVAL, FETCH_TIMEOUT,
  REQUEST_TIMEOUT, RETRIEVER, OUTPUT_DIR, OUTPUT_FORMAT, VERBOSE

`)
}
