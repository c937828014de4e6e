// Package googlemaps adapts the Google Maps Places API to places.Searcher.
package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shpitdev/gym-hunter/internal/places"
	"googlemaps.github.io/maps"
)

type Config struct {
	APIKey string

	// BaseURL overrides the Maps API base URL. Useful for proxies/testing.
	BaseURL string

	// DetailsLanguage is the language for details responses (e.g. "ja").
	DetailsLanguage string

	HTTPClient *http.Client
}

// detailFields is the details field mask; billing depends on it, so keep it minimal.
var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
	maps.PlaceDetailsFieldMaskWebsite,
	maps.PlaceDetailsFieldMaskRatings,
}

type Client struct {
	maps     *maps.Client
	language string
}

var _ places.Searcher = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	opts := []maps.ClientOption{maps.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, maps.WithHTTPClient(cfg.HTTPClient))
	}
	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Client{maps: mc, language: strings.TrimSpace(cfg.DetailsLanguage)}, nil
}

// Search runs a Places text search and returns the first page of results.
func (c *Client) Search(ctx context.Context, query, language string) ([]places.PlaceSummary, error) {
	resp, err := c.maps.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("places text search %q: %w", query, err)
	}
	out := make([]places.PlaceSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, places.PlaceSummary{ID: r.PlaceID, Name: r.Name})
	}
	return out, nil
}

// Details fetches name, address, phone, website and rating for one place.
func (c *Client) Details(ctx context.Context, id string) (places.Details, error) {
	r, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  id,
		Language: c.language,
		Fields:   detailFields,
	})
	if err != nil {
		return places.Details{}, fmt.Errorf("place details %s: %w", id, err)
	}
	d := places.Details{
		Name:    r.Name,
		Address: r.FormattedAddress,
		Phone:   r.FormattedPhoneNumber,
		Website: r.Website,
	}
	// The API omits rating for unrated places, which decodes as zero.
	if r.Rating > 0 {
		// Format at float32 precision so 4.3 stays 4.3 rather than 4.300000190734863.
		rating, err := strconv.ParseFloat(strconv.FormatFloat(float64(r.Rating), 'f', -1, 32), 64)
		if err == nil {
			d.Rating = &rating
		}
	}
	return d, nil
}
