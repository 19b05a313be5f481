package scoring

import (
	"net/url"
	"strings"

	"rfpscout/internal/config"
)

// URLFilter rejects result URLs that can never be procurement
// listings: known junk domains, foreign TLDs, and blog/news-style
// paths. Filtered URLs are dropped before scoring.
type URLFilter struct {
	blockedDomains []string
	foreignTLDs    []string
	junkPaths      []string
}

// NewURLFilter creates a URL filter from configuration.
func NewURLFilter(cfg config.URLFilter) *URLFilter {
	return &URLFilter{
		blockedDomains: lowerAll(cfg.BlockedDomains),
		foreignTLDs:    lowerAll(cfg.ForeignTLDs),
		junkPaths:      lowerAll(cfg.JunkURLPaths),
	}
}

// Allow reports whether the URL may proceed to scoring. Empty or
// unparseable URLs are rejected.
func (f *URLFilter) Allow(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	path := strings.ToLower(parsed.Path)

	for _, domain := range f.blockedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return false
		}
	}

	for _, tld := range f.foreignTLDs {
		if strings.HasSuffix(host, tld) {
			return false
		}
	}

	for _, junk := range f.junkPaths {
		if strings.Contains(path, junk) {
			return false
		}
	}

	return true
}
