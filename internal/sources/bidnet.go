package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rfpscout/internal/models"
)

// DefaultBidNetBaseURL is the public open-solicitations listing.
const DefaultBidNetBaseURL = "https://www.bidnetdirect.com/public/solicitations/open"

// BidNetAdapter scrapes BidNet Direct's public solicitation listing,
// one page per configured keyword.
type BidNetAdapter struct {
	fetcher  *Fetcher
	baseURL  string
	keywords []string
}

// NewBidNetAdapter creates the BidNet Direct adapter.
func NewBidNetAdapter(fetcher *Fetcher, keywords []string) *BidNetAdapter {
	return &BidNetAdapter{
		fetcher:  fetcher,
		baseURL:  DefaultBidNetBaseURL,
		keywords: keywords,
	}
}

// SetBaseURL overrides the listing URL. Used in tests.
func (a *BidNetAdapter) SetBaseURL(baseURL string) {
	a.baseURL = baseURL
}

// Name returns the source tag for this adapter.
func (a *BidNetAdapter) Name() string {
	return models.SourceBidNet
}

// Fetch scrapes the listing page for every keyword. Failed keywords
// are skipped; their errors are joined and returned alongside the
// results of the keywords that succeeded.
func (a *BidNetAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	var (
		results []models.Opportunity
		errs    []error
	)

	for _, keyword := range a.keywords {
		params := url.Values{"keyword": {keyword}}

		body, err := a.fetcher.Get(ctx, a.baseURL, params, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))

			continue
		}

		parsed, err := a.parseListing(body)
		if err != nil {
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))

			continue
		}

		results = append(results, parsed...)
	}

	return results, errors.Join(errs...)
}

// parseListing extracts solicitation rows from the listing HTML.
// Each row's first anchor carries the title and detail link; the
// remaining cell texts become the description.
func (a *BidNetAdapter) parseListing(html []byte) ([]models.Opportunity, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var results []models.Opportunity

	doc.Find("table tbody tr, .solicitation-item, .bid-listing").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		link := row.Find("a[href]").First()

		href, ok := link.Attr("href")
		if !ok {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		var cellTexts []string

		cells.Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if text != "" && text != title {
				cellTexts = append(cellTexts, text)
			}
		})

		results = append(results, models.Opportunity{
			Title:       title,
			URL:         absoluteURL("https://www.bidnetdirect.com", href),
			Description: truncate(strings.Join(cellTexts, " | "), maxDescriptionLen),
			Source:      models.SourceBidNet,
			FetchedAt:   timeNow(),
		})
	})

	return results, nil
}
