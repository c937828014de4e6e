// Package places discovers prospect businesses through a place-search provider.
package places

import "context"

// PlaceSummary is one raw text-search hit, before any detail lookup.
type PlaceSummary struct {
	ID   string
	Name string
}

// Details holds the enrichment fields fetched per place.
type Details struct {
	Name    string
	Address string
	Phone   string
	Website string
	// Rating is nil when the provider has no rating for the place.
	Rating *float64
}

// Candidate is a business discovered via search, pre-classification.
type Candidate struct {
	ID      string
	Name    string
	Address string
	Phone   string
	Website string
	Rating  *float64
}

// Searcher is the place-search capability the collector depends on.
type Searcher interface {
	Search(ctx context.Context, query, language string) ([]PlaceSummary, error)
	Details(ctx context.Context, id string) (Details, error)
}
