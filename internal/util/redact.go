package util

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens, e.g. Vertex AI access tokens).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Common key=value formats that sometimes leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|gemini[_-]?api[_-]?key|maps[_-]?api[_-]?key)\b\s*[:=]\s*[^\s"']+`)

	// Maps API keys travel as a "key" query parameter and show up in url.Error messages.
	queryKeyRe = regexp.MustCompile(`([?&])key=[^&\s"']+`)
)

// RedactSecrets removes obvious secret-bearing substrings from error/log strings.
//
// It is safe to call on any message, including upstream error strings.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = queryKeyRe.ReplaceAllString(out, "${1}key=<redacted>")
	return strings.TrimSpace(out)
}
