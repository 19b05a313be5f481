package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"rfpscout/internal/models"
)

// DefaultSAMGovEndpoint is the SAM.gov opportunities search API.
const DefaultSAMGovEndpoint = "https://api.sam.gov/opportunities/v2/search"

// SAMGovAdapter queries the SAM.gov federal opportunities API, one
// request per configured keyword, limited to solicitations posted
// within the lookback window.
type SAMGovAdapter struct {
	fetcher      *Fetcher
	endpoint     string
	apiKey       string
	keywords     []string
	lookbackDays int
}

// samOpportunity is one raw opportunity record from SAM.gov.
type samOpportunity struct {
	NoticeID           string `json:"noticeId"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	PostedDate         string `json:"postedDate"`
	FullParentPathName string `json:"fullParentPathName"`
}

type samResponse struct {
	OpportunitiesData []samOpportunity `json:"opportunitiesData"`
}

// NewSAMGovAdapter creates the SAM.gov adapter.
func NewSAMGovAdapter(fetcher *Fetcher, apiKey string, keywords []string, lookbackDays int) *SAMGovAdapter {
	return &SAMGovAdapter{
		fetcher:      fetcher,
		endpoint:     DefaultSAMGovEndpoint,
		apiKey:       apiKey,
		keywords:     keywords,
		lookbackDays: lookbackDays,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (a *SAMGovAdapter) SetEndpoint(endpoint string) {
	a.endpoint = endpoint
}

// Name returns the source tag for this adapter.
func (a *SAMGovAdapter) Name() string {
	return models.SourceSAMGov
}

// Fetch queries the API for every keyword. Failed keywords are
// skipped; their errors are joined and returned alongside the results
// of the keywords that succeeded.
func (a *SAMGovAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	postedFrom := timeNow().AddDate(0, 0, -a.lookbackDays).Format("01/02/2006")

	var (
		results []models.Opportunity
		errs    []error
	)

	for _, keyword := range a.keywords {
		params := url.Values{
			"api_key":    {a.apiKey},
			"keywords":   {keyword},
			"postedFrom": {postedFrom},
			"limit":      {strconv.Itoa(25)},
			"ptype":      {"o"},
		}

		var resp samResponse

		if err := a.fetcher.GetJSON(ctx, a.endpoint, params, nil, &resp); err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))

			continue
		}

		for _, opp := range resp.OpportunitiesData {
			results = append(results, a.normalize(opp))
		}
	}

	return results, errors.Join(errs...)
}

// normalize maps a raw SAM.gov record into an Opportunity. The
// notice ID becomes the public opportunity URL.
func (a *SAMGovAdapter) normalize(opp samOpportunity) models.Opportunity {
	return models.Opportunity{
		Title:       strings.TrimSpace(opp.Title),
		URL:         fmt.Sprintf("https://sam.gov/opp/%s/view", opp.NoticeID),
		Description: truncate(strings.TrimSpace(opp.Description), maxDescriptionLen),
		Source:      models.SourceSAMGov,
		PostedDate:  opp.PostedDate,
		Agency:      opp.FullParentPathName,
		FetchedAt:   timeNow(),
	}
}
