// Package norm is the single place where query text is normalized.
//
// The classifier, the embedding cache and the result-cache key all go through
// Query so that "What properties? " and "what properties?" collapse to the
// same cache entry everywhere, not just in one cache.
package norm

import "strings"

// Query returns the canonical form of a query string: trimmed and lowercased.
func Query(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
