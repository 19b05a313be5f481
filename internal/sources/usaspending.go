package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rfpscout/internal/models"
)

// DefaultUSASpendingEndpoint is the award search API on USASpending.gov.
const DefaultUSASpendingEndpoint = "https://api.usaspending.gov/api/v2/search/spending_by_award/"

// usaSpendingExpiryMonths is the window for "expiring soon": contracts
// whose period of performance ends within this many months are signals
// that the awarding agency may re-compete the work.
const usaSpendingExpiryMonths = 12

// USASpendingAdapter searches the federal award database for contracts
// expiring soon. Its results feed the digest's expiring-contracts
// section directly; they are neither scored nor deduplicated.
type USASpendingAdapter struct {
	fetcher  *Fetcher
	endpoint string
	keywords []string
}

type usaSpendingRequest struct {
	Filters usaSpendingFilters `json:"filters"`
	Fields  []string           `json:"fields"`
	Limit   int                `json:"limit"`
	Order   string             `json:"order"`
	Sort    string             `json:"sort"`
}

type usaSpendingFilters struct {
	Keywords       []string            `json:"keywords"`
	AwardTypeCodes []string            `json:"award_type_codes"`
	TimePeriod     []usaSpendingPeriod `json:"time_period"`
}

type usaSpendingPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DateType  string `json:"date_type"`
}

type usaSpendingAward struct {
	GeneratedInternalID string `json:"generated_internal_id"`
	Description         string `json:"Description"`
	RecipientName       string `json:"Recipient Name"`
	AwardingAgency      string `json:"Awarding Agency"`
	EndDate             string `json:"End Date"`
}

type usaSpendingResponse struct {
	Results []usaSpendingAward `json:"results"`
}

// NewUSASpendingAdapter creates the USASpending adapter.
func NewUSASpendingAdapter(fetcher *Fetcher, keywords []string) *USASpendingAdapter {
	return &USASpendingAdapter{
		fetcher:  fetcher,
		endpoint: DefaultUSASpendingEndpoint,
		keywords: keywords,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (a *USASpendingAdapter) SetEndpoint(endpoint string) {
	a.endpoint = endpoint
}

// Name returns the source tag for this adapter.
func (a *USASpendingAdapter) Name() string {
	return models.SourceUSASpending
}

// Fetch queries the award search API once per keyword phrase for
// contracts whose period of performance ends inside the expiry window.
// The contract end date is carried in PostedDate.
func (a *USASpendingAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	now := timeNow()

	period := usaSpendingPeriod{
		StartDate: now.Format("2006-01-02"),
		EndDate:   now.AddDate(0, usaSpendingExpiryMonths, 0).Format("2006-01-02"),
		DateType:  "action_date",
	}

	var (
		results []models.Opportunity
		errs    []error
	)

	for _, keyword := range a.keywords {
		req := usaSpendingRequest{
			Filters: usaSpendingFilters{
				Keywords:       []string{keyword},
				AwardTypeCodes: []string{"A", "B", "C", "D"},
				TimePeriod:     []usaSpendingPeriod{period},
			},
			Fields: []string{
				"Award ID", "Description", "Recipient Name",
				"Awarding Agency", "End Date",
			},
			Limit: 10,
			Order: "asc",
			Sort:  "End Date",
		}

		var resp usaSpendingResponse

		if err := a.fetcher.PostJSON(ctx, a.endpoint, nil, req, &resp); err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))

			continue
		}

		for _, award := range resp.Results {
			normalized, ok := a.normalize(award)
			if ok {
				results = append(results, normalized)
			}
		}
	}

	return results, errors.Join(errs...)
}

// normalize maps a raw award into an Opportunity. Awards without a
// description are dropped since the title would be empty.
func (a *USASpendingAdapter) normalize(award usaSpendingAward) (models.Opportunity, bool) {
	title := strings.TrimSpace(award.Description)
	if title == "" {
		return models.Opportunity{}, false
	}

	description := ""
	if award.RecipientName != "" {
		description = "Current contractor: " + award.RecipientName
	}

	return models.Opportunity{
		Title:       truncate(title, maxDescriptionLen),
		URL:         fmt.Sprintf("https://www.usaspending.gov/award/%s", award.GeneratedInternalID),
		Description: description,
		Source:      models.SourceUSASpending,
		PostedDate:  award.EndDate,
		Agency:      award.AwardingAgency,
		FetchedAt:   timeNow(),
	}, true
}
