// Package classify scores a prospect's website text against the sales rubric.
package classify

import (
	"strings"
)

// Rank is the business-development priority, S (highest) through C.
type Rank string

const (
	RankS Rank = "S"
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
)

// Ranks lists the valid ranks in priority order.
var Ranks = []Rank{RankS, RankA, RankB, RankC}

// ParseRank normalizes s ("s", " A ") to a Rank.
func ParseRank(s string) (Rank, bool) {
	r := Rank(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RankS, RankA, RankB, RankC:
		return r, true
	}
	return "", false
}

// Order returns the sort position of r. Unknown ranks sort after C.
func (r Rank) Order() int {
	switch r {
	case RankS:
		return 0
	case RankA:
		return 1
	case RankB:
		return 2
	case RankC:
		return 3
	}
	return 4
}

// ReasonInsufficientContent marks a B that was never sent to the model.
const ReasonInsufficientContent = "insufficient website content"

// Verdict is the structured outcome of classifying one website.
type Verdict struct {
	Rank     Rank
	Reason   string
	Features []string
	// Phone is a number the model found in the text, if any.
	Phone string
}

// DefaultVerdict is the rank-B fallback used whenever classification cannot run.
func DefaultVerdict(reason string) Verdict {
	return Verdict{Rank: RankB, Reason: reason, Features: []string{}}
}
