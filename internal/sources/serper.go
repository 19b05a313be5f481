package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rfpscout/internal/models"
)

// DefaultSerperEndpoint is the Serper.dev search API.
const DefaultSerperEndpoint = "https://google.serper.dev/search"

// SerperAdapter searches Google via the Serper.dev API, one request
// per configured query, restricted to the lookback window.
type SerperAdapter struct {
	fetcher      *Fetcher
	endpoint     string
	apiKey       string
	queries      []string
	lookbackDays int
}

// serperOrganic is one organic search result as returned by Serper.
type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

// NewSerperAdapter creates the Serper search adapter.
func NewSerperAdapter(fetcher *Fetcher, apiKey string, queries []string, lookbackDays int) *SerperAdapter {
	return &SerperAdapter{
		fetcher:      fetcher,
		endpoint:     DefaultSerperEndpoint,
		apiKey:       apiKey,
		queries:      queries,
		lookbackDays: lookbackDays,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (a *SerperAdapter) SetEndpoint(endpoint string) {
	a.endpoint = endpoint
}

// Name returns the source tag for this adapter.
func (a *SerperAdapter) Name() string {
	return models.SourceSerper
}

// Fetch runs every configured query and returns the merged results.
// Failed queries are skipped; their errors are joined and returned
// alongside whatever results the other queries produced.
func (a *SerperAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	var (
		results []models.Opportunity
		errs    []error
	)

	for _, query := range a.queries {
		payload := map[string]any{
			"q":   query,
			"num": 20,
			"tbs": fmt.Sprintf("qdr:d%d", a.lookbackDays),
		}

		var resp serperResponse

		err := a.fetcher.PostJSON(ctx, a.endpoint, map[string]string{"X-API-KEY": a.apiKey}, payload, &resp)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", query, err))

			continue
		}

		for _, item := range resp.Organic {
			results = append(results, a.normalize(item))
		}
	}

	return results, errors.Join(errs...)
}

// normalize maps a raw Serper organic result into an Opportunity.
func (a *SerperAdapter) normalize(item serperOrganic) models.Opportunity {
	return models.Opportunity{
		Title:       strings.TrimSpace(item.Title),
		URL:         strings.TrimSpace(item.Link),
		Description: truncate(strings.TrimSpace(item.Snippet), maxDescriptionLen),
		Source:      models.SourceSerper,
		PostedDate:  item.Date,
		FetchedAt:   timeNow(),
	}
}
