// Package urlkey derives the identity key used to deduplicate
// opportunities within a run and across runs.
package urlkey

import "strings"

// Canonical reduces a URL to its dedup key: the query string and
// fragment are dropped, a trailing slash is trimmed, and the result is
// lowercased. Two listings whose URLs differ only in tracking
// parameters or casing are the same opportunity.
//
// Scheme differences (http vs https) are deliberately preserved.
func Canonical(rawURL string) string {
	key := rawURL
	if i := strings.IndexByte(key, '?'); i >= 0 {
		key = key[:i]
	}

	if i := strings.IndexByte(key, '#'); i >= 0 {
		key = key[:i]
	}

	key = strings.TrimRight(key, "/")

	return strings.ToLower(key)
}
