package sources

import (
	"strings"
	"time"
)

// maxDescriptionLen caps raw descriptions before they enter the
// pipeline; digest rendering truncates further for display.
const maxDescriptionLen = 300

// timeNow is swapped out in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}

// absoluteURL resolves href against base when it is not already
// absolute.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	return strings.TrimRight(base, "/") + href
}

// matchesAnyKeyword reports whether any of the lowercased keywords
// appears in text (case-insensitive).
func matchesAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}
