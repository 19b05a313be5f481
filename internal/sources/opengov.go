package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"rfpscout/internal/models"
)

// DefaultOpenGovEndpoint is OpenGov's public procurement search API.
const DefaultOpenGovEndpoint = "https://procurement.opengov.com/api/opportunities/search"

// OpenGovAdapter queries OpenGov's public procurement API, one
// request per configured keyword. The API needs no key.
type OpenGovAdapter struct {
	fetcher  *Fetcher
	endpoint string
	keywords []string
}

// openGovOpportunity is one raw record. The API has shipped two field
// vocabularies over time, so both are mapped.
type openGovOpportunity struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Permalink   string `json:"permalink"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	EntityName  string `json:"entity_name"`
}

type openGovResponse struct {
	Opportunities []openGovOpportunity `json:"opportunities"`
	Results       []openGovOpportunity `json:"results"`
}

func (r openGovResponse) records() []openGovOpportunity {
	if len(r.Opportunities) > 0 {
		return r.Opportunities
	}

	return r.Results
}

// NewOpenGovAdapter creates the OpenGov adapter.
func NewOpenGovAdapter(fetcher *Fetcher, keywords []string) *OpenGovAdapter {
	return &OpenGovAdapter{
		fetcher:  fetcher,
		endpoint: DefaultOpenGovEndpoint,
		keywords: keywords,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (a *OpenGovAdapter) SetEndpoint(endpoint string) {
	a.endpoint = endpoint
}

// Name returns the source tag for this adapter.
func (a *OpenGovAdapter) Name() string {
	return models.SourceOpenGov
}

// Fetch queries the API for every keyword. Failed keywords are
// skipped; their errors are joined and returned alongside the results
// of the keywords that succeeded.
func (a *OpenGovAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	var (
		results []models.Opportunity
		errs    []error
	)

	for _, keyword := range a.keywords {
		params := url.Values{
			"q":        {keyword},
			"status":   {"open"},
			"per_page": {"25"},
		}

		var resp openGovResponse

		if err := a.fetcher.GetJSON(ctx, a.endpoint, params, nil, &resp); err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))

			continue
		}

		for _, opp := range resp.records() {
			normalized, ok := a.normalize(opp)
			if ok {
				results = append(results, normalized)
			}
		}
	}

	return results, errors.Join(errs...)
}

// normalize maps a raw OpenGov record into an Opportunity. Records
// missing a title or link are dropped.
func (a *OpenGovAdapter) normalize(opp openGovOpportunity) (models.Opportunity, bool) {
	title := opp.Title
	if title == "" {
		title = opp.Name
	}

	link := opp.URL
	if link == "" {
		link = opp.Permalink
	}

	if title == "" || link == "" {
		return models.Opportunity{}, false
	}

	return models.Opportunity{
		Title:       strings.TrimSpace(title),
		URL:         absoluteURL("https://procurement.opengov.com", link),
		Description: truncate(strings.TrimSpace(opp.Description), maxDescriptionLen),
		Source:      models.SourceOpenGov,
		PostedDate:  opp.PublishedAt,
		Agency:      opp.EntityName,
		FetchedAt:   timeNow(),
	}, true
}
