package places_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shpitdev/gym-hunter/internal/places"
)

type fakeSearcher struct {
	results   map[string][]places.PlaceSummary
	failQuery map[string]bool
	details   map[string]places.Details
	failID    map[string]bool

	mu           sync.Mutex
	searchCalls  []string
	detailsCalls []string
	callTimes    []time.Time
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string) ([]places.PlaceSummary, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.callTimes = append(f.callTimes, time.Now())
	f.mu.Unlock()
	if f.failQuery[query] {
		return nil, errors.New("quota exceeded")
	}
	return f.results[query], nil
}

func (f *fakeSearcher) Details(_ context.Context, id string) (places.Details, error) {
	f.mu.Lock()
	f.detailsCalls = append(f.detailsCalls, id)
	f.callTimes = append(f.callTimes, time.Now())
	f.mu.Unlock()
	if f.failID[id] {
		return places.Details{}, errors.New("details unavailable")
	}
	return f.details[id], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ids(cands []places.Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestCollect_DedupesAcrossQueries(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{
		results: map[string][]places.PlaceSummary{
			"north gym":    {{ID: "p1", Name: "Gym One"}, {ID: "p2", Name: "Gym Two"}},
			"north studio": {{ID: "p2", Name: "Gym Two"}, {ID: "p3", Name: "Gym Three"}, {ID: "p1", Name: "Gym One"}},
		},
		details: map[string]places.Details{
			"p1": {Name: "Gym One", Address: "1-1 Kita"},
			"p2": {Name: "Gym Two", Address: "2-2 Kita"},
			"p3": {Name: "Gym Three", Address: "3-3 Kita"},
		},
	}

	c := places.NewCollector(s, places.CollectorOptions{}, discardLogger())
	got, err := c.Collect(context.Background(), []string{"north gym", "north studio"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(ids(got), []string{"p1", "p2", "p3"}) {
		t.Fatalf("unexpected candidates: %v", ids(got))
	}
	if !slices.Equal(s.detailsCalls, []string{"p1", "p2", "p3"}) {
		t.Fatalf("details must be fetched once per distinct id, got %v", s.detailsCalls)
	}
	if got[1].Address != "2-2 Kita" {
		t.Fatalf("unexpected details merge: %#v", got[1])
	}
}

func TestCollect_ExcludedNamesNeverFetchDetails(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{
		results: map[string][]places.PlaceSummary{
			"Area A gym": {
				{ID: "chain", Name: "Planet Big-Chain Gym"},
				{ID: "local", Name: "Local Fit Studio"},
				{ID: "chain2", Name: "BIG-CHAIN express"},
			},
		},
		details: map[string]places.Details{
			"local": {Name: "Local Fit Studio", Website: "http://example.com"},
		},
	}

	c := places.NewCollector(s, places.CollectorOptions{ExcludeKeywords: []string{"big-chain"}}, discardLogger())
	got, err := c.Collect(context.Background(), []string{"Area A gym"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Local Fit Studio" || got[0].Website != "http://example.com" {
		t.Fatalf("unexpected candidates: %#v", got)
	}
	if !slices.Equal(s.detailsCalls, []string{"local"}) {
		t.Fatalf("details requested for excluded place: %v", s.detailsCalls)
	}
}

func TestCollect_FailedQueryDoesNotAbort(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{
		results: map[string][]places.PlaceSummary{
			"ok query": {{ID: "p9", Name: "Studio Nine"}},
		},
		failQuery: map[string]bool{"bad query": true},
		details:   map[string]places.Details{"p9": {Name: "Studio Nine"}},
	}

	c := places.NewCollector(s, places.CollectorOptions{}, discardLogger())
	got, err := c.Collect(context.Background(), []string{"bad query", "ok query"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(ids(got), []string{"p9"}) {
		t.Fatalf("unexpected candidates: %v", ids(got))
	}
	if !slices.Equal(s.searchCalls, []string{"bad query", "ok query"}) {
		t.Fatalf("unexpected search calls: %v", s.searchCalls)
	}
}

func TestCollect_FailedDetailsKeepsSummary(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{
		results: map[string][]places.PlaceSummary{"q": {{ID: "p1", Name: "Gym One"}}},
		failID:  map[string]bool{"p1": true},
	}

	c := places.NewCollector(s, places.CollectorOptions{}, discardLogger())
	got, err := c.Collect(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Gym One" || got[0].Website != "" {
		t.Fatalf("unexpected candidates: %#v", got)
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := places.NewCollector(s, places.CollectorOptions{}, discardLogger())
	_, err := c.Collect(ctx, []string{"q"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(s.searchCalls) != 0 {
		t.Fatalf("no search expected after cancellation, got %v", s.searchCalls)
	}
}

func TestCollect_PacesEveryProviderCall(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{
		results: map[string][]places.PlaceSummary{
			"good": {{ID: "p1", Name: "Gym One"}, {ID: "p2", Name: "Gym Two"}},
		},
		failQuery: map[string]bool{"bad": true},
		details: map[string]places.Details{
			"p1": {Name: "Gym One"},
			"p2": {Name: "Gym Two"},
		},
	}

	interval := 20 * time.Millisecond
	c := places.NewCollector(s, places.CollectorOptions{Interval: interval}, discardLogger())
	if _, err := c.Collect(context.Background(), []string{"bad", "good"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// search bad (fails), search good, details p1, details p2.
	if len(s.callTimes) != 4 {
		t.Fatalf("expected 4 provider calls, got %d", len(s.callTimes))
	}
	// Allow a little scheduler slack below the nominal interval.
	for i := 1; i < len(s.callTimes); i++ {
		if gap := s.callTimes[i].Sub(s.callTimes[i-1]); gap < interval-5*time.Millisecond {
			t.Fatalf("call %d started %s after the previous one, want >= %s", i, gap, interval)
		}
	}
}
