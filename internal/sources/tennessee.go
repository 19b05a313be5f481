package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rfpscout/internal/models"
)

// DefaultTennesseeURL is Tennessee's public RFP listing page: a static
// HTML table with no keyword search, filtered locally instead.
const DefaultTennesseeURL = "https://www.tn.gov/generalservices/procurement/" +
	"central-procurement-office--cpo-/supplier-information/" +
	"request-for-proposals--rfp--opportunities1.html"

// TennesseeAdapter scrapes Tennessee's RFP opportunity table.
// Table columns: document links, dates, event name, last updated.
type TennesseeAdapter struct {
	fetcher  *Fetcher
	pageURL  string
	keywords []string
}

// NewTennesseeAdapter creates the Tennessee adapter.
func NewTennesseeAdapter(fetcher *Fetcher, keywords []string) *TennesseeAdapter {
	return &TennesseeAdapter{
		fetcher:  fetcher,
		pageURL:  DefaultTennesseeURL,
		keywords: keywords,
	}
}

// SetPageURL overrides the listing page URL. Used in tests.
func (a *TennesseeAdapter) SetPageURL(pageURL string) {
	a.pageURL = pageURL
}

// Name returns the source tag for this adapter.
func (a *TennesseeAdapter) Name() string {
	return models.SourceTennessee
}

// Fetch downloads the full listing table and keeps the rows whose
// event name matches a configured keyword.
func (a *TennesseeAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	body, err := a.fetcher.Get(ctx, a.pageURL, nil, nil)
	if err != nil {
		return nil, err
	}

	return a.parseTable(body)
}

func (a *TennesseeAdapter) parseTable(html []byte) ([]models.Opportunity, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var results []models.Opportunity

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		// Col 2 = event name (0-indexed: doc links, dates, event name).
		title := strings.TrimSpace(cells.Eq(2).Text())
		if title == "" || !matchesAnyKeyword(title, a.keywords) {
			return
		}

		// Primary link = first anchor in the document cell, a PDF or
		// detail page. Fall back to the listing page itself.
		href, ok := cells.Eq(0).Find("a[href]").First().Attr("href")
		switch {
		case !ok || href == "":
			href = a.pageURL
		case strings.HasPrefix(href, "/"):
			href = "https://www.tn.gov" + href
		case !strings.HasPrefix(href, "http"):
			href = a.pageURL
		}

		description := ""
		if dates := strings.TrimSpace(cells.Eq(1).Text()); dates != "" {
			description = "Dates: " + dates
		}

		results = append(results, models.Opportunity{
			Title:       title,
			URL:         href,
			Description: description,
			Source:      models.SourceTennessee,
			Agency:      "State of Tennessee",
			FetchedAt:   timeNow(),
		})
	})

	return results, nil
}
