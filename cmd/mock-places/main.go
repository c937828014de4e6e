package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/shpitdev/gym-hunter/internal/mockplaces"
)

func main() {
	addr := defaultString("MOCK_PLACES_ADDR", ":8081")
	fixtures := defaultString("MOCK_PLACES_FIXTURES", "")
	apiKey := defaultString("MOCK_PLACES_API_KEY", "")

	fs := flag.NewFlagSet("mock-places", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&fixtures, "fixtures", fixtures, "YAML fixture file with places, queries and fail_queries")
	fs.StringVar(&apiKey, "api-key", apiKey, "Reject requests whose key parameter differs (empty accepts any key)")
	_ = fs.Parse(os.Args[1:])

	srv := mockplaces.New()
	if fixtures != "" {
		var err error
		if srv, err = mockplaces.LoadFixtures(fixtures); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "fixtures error: %v\n", err)
			os.Exit(2)
		}
	}
	if apiKey != "" {
		srv.RequireAPIKey(apiKey)
	}

	_, _ = fmt.Fprintf(os.Stdout, "mock-places listening on %s (fixtures=%s)\n", addr, fixtures)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}
