// Package mockplaces serves a minimal Places-API-compatible surface for tests and
// offline runs.
package mockplaces

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Place is one fixture business.
type Place struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Address string  `yaml:"address"`
	Phone   string  `yaml:"phone"`
	Website string  `yaml:"website"`
	Rating  float64 `yaml:"rating"`
}

// Call records a request made to the mock service.
type Call struct {
	Path    string
	Query   string
	PlaceID string
}

// Fixtures is the on-disk fixture format loaded by LoadFixtures.
type Fixtures struct {
	Places []Place `yaml:"places"`
	// Queries maps a text-search query to the place ids it returns, in order.
	Queries map[string][]string `yaml:"queries"`
	// FailQueries lists queries that answer with an error status.
	FailQueries []string `yaml:"fail_queries"`
}

// Server implements the text search and place details endpoints.
type Server struct {
	mu          sync.Mutex
	calls       []Call
	places      map[string]Place
	queries     map[string][]string
	failQueries map[string]bool
	apiKey      string
}

// New constructs an empty mock server.
func New() *Server {
	return &Server{
		places:      make(map[string]Place),
		queries:     make(map[string][]string),
		failQueries: make(map[string]bool),
	}
}

// LoadFixtures reads a YAML (or JSON) fixture file into a new server.
func LoadFixtures(path string) (*Server, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fx Fixtures
	if err := yaml.Unmarshal(b, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	s := New()
	for _, p := range fx.Places {
		s.AddPlace(p)
	}
	for q, ids := range fx.Queries {
		s.SetResults(q, ids...)
	}
	for _, q := range fx.FailQueries {
		s.FailQuery(q)
	}
	return s, nil
}

// RequireAPIKey enforces that requests carry key=<apiKey>.
// If apiKey is empty, the key is not checked.
func (s *Server) RequireAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(apiKey)
}

func (s *Server) AddPlace(p Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[p.ID] = p
}

// SetResults configures the ordered place ids returned for query.
func (s *Server) SetResults(query string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[query] = append([]string(nil), ids...)
}

// FailQuery makes text searches for query answer with INVALID_REQUEST.
func (s *Server) FailQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failQueries[query] = true
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/textsearch/json", s.handleTextSearch)
	mux.HandleFunc("/maps/api/place/details/json", s.handleDetails)
	return mux
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// DetailsCalls returns the place ids requested from the details endpoint, in order.
func (s *Server) DetailsCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.PlaceID != "" {
			out = append(out, c.PlaceID)
		}
	}
	return out
}

func (s *Server) recordCall(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	s.calls = append(s.calls, Call{Path: r.URL.Path, Query: q.Get("query"), PlaceID: placeID(q)})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	expected := s.apiKey
	s.mu.Unlock()

	if expected == "" || r.URL.Query().Get("key") == expected {
		return true
	}
	// The real API reports auth problems in the body with a 200 status.
	writeJSON(w, map[string]any{
		"status":        "REQUEST_DENIED",
		"error_message": "The provided API key is invalid.",
	})
	return false
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r)
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r) {
		return
	}

	query := r.URL.Query().Get("query")
	s.mu.Lock()
	fail := s.failQueries[query]
	ids := s.queries[query]
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		p, ok := s.places[id]
		if !ok {
			continue
		}
		results = append(results, map[string]any{"place_id": p.ID, "name": p.Name})
	}
	s.mu.Unlock()

	if fail {
		writeJSON(w, map[string]any{
			"status":        "INVALID_REQUEST",
			"error_message": "forced failure for " + query,
		})
		return
	}
	status := "OK"
	if len(results) == 0 {
		status = "ZERO_RESULTS"
	}
	writeJSON(w, map[string]any{"status": status, "results": results})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r)
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorize(w, r) {
		return
	}

	id := placeID(r.URL.Query())
	s.mu.Lock()
	p, ok := s.places[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, map[string]any{"status": "NOT_FOUND"})
		return
	}

	result := map[string]any{
		"place_id":               p.ID,
		"name":                   p.Name,
		"formatted_address":      p.Address,
		"formatted_phone_number": p.Phone,
		"website":                p.Website,
	}
	if p.Rating > 0 {
		result["rating"] = p.Rating
	}
	writeJSON(w, map[string]any{"status": "OK", "result": result})
}

// placeID reads the details place id. The Go client sends "placeid"; the
// documented REST name is "place_id".
func placeID(q url.Values) string {
	if id := q.Get("placeid"); id != "" {
		return id
	}
	return q.Get("place_id")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(v)
}
