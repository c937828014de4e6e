package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/shpitdev/gym-hunter/internal/classify"
	"github.com/shpitdev/gym-hunter/internal/places"
)

// Record is a candidate merged with its verdict; the unit of export.
type Record struct {
	PlaceID     string
	Rank        classify.Rank
	Name        string
	Address     string
	Phone       string
	Website     string
	Reason      string
	Features    []string
	Rating      *float64
	RetrievedAt time.Time
}

// Merge combines a candidate and its verdict. The provider's phone number wins;
// the model-inferred one only fills a gap.
func Merge(c places.Candidate, v classify.Verdict, retrievedAt time.Time) Record {
	phone := strings.TrimSpace(c.Phone)
	if phone == "" {
		phone = strings.TrimSpace(v.Phone)
	}
	features := v.Features
	if features == nil {
		features = []string{}
	}
	return Record{
		PlaceID:     c.ID,
		Rank:        v.Rank,
		Name:        c.Name,
		Address:     c.Address,
		Phone:       phone,
		Website:     c.Website,
		Reason:      v.Reason,
		Features:    features,
		Rating:      c.Rating,
		RetrievedAt: retrievedAt,
	}
}

// SortByRank orders records S, A, B, C, then unknown ranks. Equal ranks keep
// their current relative order.
func SortByRank(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.Rank.Order() - b.Rank.Order()
	})
}

// Summary counts records per rank.
func Summary(records []Record) map[classify.Rank]int {
	out := make(map[classify.Rank]int, len(classify.Ranks))
	for _, r := range classify.Ranks {
		out[r] = 0
	}
	for _, rec := range records {
		out[rec.Rank]++
	}
	return out
}
