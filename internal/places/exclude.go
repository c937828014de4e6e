package places

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// ExcludeFilter drops businesses whose name contains any configured keyword.
//
// Matching is case-insensitive and ignores full-width/half-width differences, so
// "ＡＮＹＴＩＭＥ" matches the keyword "anytime".
type ExcludeFilter struct {
	keywords []string
}

// NewExcludeFilter normalizes keywords once. Blank keywords are ignored.
func NewExcludeFilter(keywords []string) ExcludeFilter {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalizeName(kw)
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return ExcludeFilter{keywords: out}
}

// Match reports the first keyword found in name, if any.
func (f ExcludeFilter) Match(name string) (string, bool) {
	n := normalizeName(name)
	if n == "" {
		return "", false
	}
	for _, kw := range f.keywords {
		if strings.Contains(n, kw) {
			return kw, true
		}
	}
	return "", false
}

// Excludes reports whether name matches any keyword.
func (f ExcludeFilter) Excludes(name string) bool {
	_, ok := f.Match(name)
	return ok
}

func normalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(width.Fold.String(s))
}
