package mockplaces_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shpitdev/gym-hunter/internal/mockplaces"
	"github.com/shpitdev/gym-hunter/internal/places/googlemaps"
)

type searchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID string `json:"place_id"`
		Name    string `json:"name"`
	} `json:"results"`
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestLoadFixtures(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	fixture := `
places:
  - id: p1
    name: Local Fit Studio
    website: http://example.com
    rating: 4.5
  - id: p2
    name: Planet Big-Chain Gym
queries:
  "Area A gym": [p2, p1]
fail_queries:
  - "Area B gym"
`
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv, err := mockplaces.LoadFixtures(path)
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var ok searchResponse
	getJSON(t, ts.URL+"/maps/api/place/textsearch/json?query=Area+A+gym", &ok)
	if ok.Status != "OK" || len(ok.Results) != 2 || ok.Results[0].PlaceID != "p2" || ok.Results[1].Name != "Local Fit Studio" {
		t.Fatalf("unexpected search response: %#v", ok)
	}

	var failed searchResponse
	getJSON(t, ts.URL+"/maps/api/place/textsearch/json?query=Area+B+gym", &failed)
	if failed.Status != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %q", failed.Status)
	}

	if calls := srv.Calls(); len(calls) != 2 || calls[0].Query != "Area A gym" {
		t.Fatalf("unexpected calls: %#v", calls)
	}
}

func TestRequireAPIKey(t *testing.T) {
	t.Parallel()

	srv := mockplaces.New()
	srv.RequireAPIKey("secret")
	srv.AddPlace(mockplaces.Place{ID: "p1", Name: "Gym"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	wrong, err := googlemaps.New(googlemaps.Config{APIKey: "wrong", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := wrong.Details(ctx, "p1"); err == nil || !strings.Contains(err.Error(), "REQUEST_DENIED") {
		t.Fatalf("expected REQUEST_DENIED, got %v", err)
	}

	right, err := googlemaps.New(googlemaps.Config{APIKey: "secret", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	d, err := right.Details(ctx, "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if d.Name != "Gym" {
		t.Fatalf("unexpected details: %#v", d)
	}
	if got := srv.DetailsCalls(); len(got) != 2 || got[0] != "p1" || got[1] != "p1" {
		t.Fatalf("unexpected details calls: %v", got)
	}
}

func TestDetails_AcceptsBothPlaceIDSpellings(t *testing.T) {
	t.Parallel()

	srv := mockplaces.New()
	srv.AddPlace(mockplaces.Place{ID: "p1", Name: "Gym"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, param := range []string{"placeid", "place_id"} {
		var resp struct {
			Status string `json:"status"`
			Result struct {
				Name string `json:"name"`
			} `json:"result"`
		}
		getJSON(t, ts.URL+"/maps/api/place/details/json?"+param+"=p1", &resp)
		if resp.Status != "OK" || resp.Result.Name != "Gym" {
			t.Fatalf("%s: unexpected details response: %#v", param, resp)
		}
	}
	if got := srv.DetailsCalls(); len(got) != 2 {
		t.Fatalf("unexpected details calls: %v", got)
	}
}
