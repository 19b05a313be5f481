package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rfpscout/internal/models"
)

// Several states run procurement on the Infor Public Sector platform
// (formerly BuySpeed / Periscope S2G). They share the same URL layout:
//
//	public browse:  {base}/page.aspx/en/rfp/request_browse_public
//	AJAX data feed: {base}/ajax.aspx/en/rfp/request_browse_public
//
// The AJAX endpoint returns server-rendered HTML with the full grid;
// pagination is driven by hidden form fields POSTed back per page.
const (
	inforBrowsePath = "/page.aspx/en/rfp/request_browse_public"
	inforAjaxPath   = "/ajax.aspx/en/rfp/request_browse_public"

	// Hidden fields controlling the grid pager.
	inforMaxPageField     = "maxpageindexbody_x_grid_grd"
	inforCurrentPageField = "hdnCurrentPageIndexbody_x_grid_grd"

	inforMaxPages = 15
)

// InforAdapter fetches all open solicitations from one Infor/BuySpeed
// state portal, paginating through the grid, and keeps the
// keyword-matched rows.
type InforAdapter struct {
	fetcher    *Fetcher
	portalName string
	baseURL    string
	keywords   []string
}

// NewInforAdapter creates an adapter for one state portal.
func NewInforAdapter(fetcher *Fetcher, portalName, baseURL string, keywords []string) *InforAdapter {
	return &InforAdapter{
		fetcher:    fetcher,
		portalName: portalName,
		baseURL:    strings.TrimRight(baseURL, "/"),
		keywords:   keywords,
	}
}

// Name returns the source tag for this adapter.
func (a *InforAdapter) Name() string {
	return a.portalName + " Procurement"
}

// Fetch retrieves every grid page and returns the keyword-matched
// solicitations.
func (a *InforAdapter) Fetch(ctx context.Context) ([]models.Opportunity, error) {
	ajaxURL := a.baseURL + inforAjaxPath
	headers := map[string]string{
		"Referer":          a.baseURL + inforBrowsePath,
		"X-Requested-With": "XMLHttpRequest",
	}

	body, err := a.fetcher.Get(ctx, ajaxURL, nil, headers)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse grid HTML: %w", err)
	}

	all := a.parseGrid(doc)
	maxPage := a.maxPageIndex(doc)
	form := hiddenFormFields(doc)

	var errs []error

	// Pages 1..N via POST, carrying the hidden form state forward.
	for page := 1; page <= maxPage && page < inforMaxPages; page++ {
		form.Set(inforCurrentPageField, strconv.Itoa(page))

		pageBody, err := a.fetcher.PostForm(ctx, ajaxURL, headers, form)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", page, err))

			break
		}

		pageDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageBody))
		if err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", page, err))

			break
		}

		all = append(all, a.parseGrid(pageDoc)...)
	}

	var matched []models.Opportunity

	for _, opp := range all {
		if matchesAnyKeyword(opp.Title+" "+opp.Description+" "+opp.Agency, a.keywords) {
			matched = append(matched, opp)
		}
	}

	return matched, errors.Join(errs...)
}

// parseGrid extracts solicitations from one page of the grid. The
// accessible title lives in a screen-reader span ("Edit TITLE"); the
// detail link is the extranet process-manage anchor.
func (a *InforAdapter) parseGrid(doc *goquery.Document) []models.Opportunity {
	var results []models.Opportunity

	grid := doc.Find(`table[id*="grd"]`).First()

	grid.Find("tr").Each(func(_ int, row *goquery.Selection) {
		title := ""

		row.Find("span.sr-only").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := strings.TrimSpace(span.Text())
			if strings.HasPrefix(text, "Edit ") {
				title = strings.TrimPrefix(text, "Edit ")

				return false
			}

			return true
		})

		if title == "" {
			return
		}

		oppURL := a.baseURL + inforBrowsePath

		if href, ok := row.Find(`a[href*="process_manage_extranet"]`).First().Attr("href"); ok {
			oppURL = absoluteURL(a.baseURL, href)
		}

		// Cell layout: edit button, code, label, publish begin,
		// commodity, agency, publish end, status and the rest.
		var cellTexts []string

		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cellTexts = append(cellTexts, strings.TrimSpace(cell.Text()))
		})

		agency := ""
		if len(cellTexts) > 5 {
			agency = cellTexts[5]
		}

		description := ""
		if len(cellTexts) > 6 && cellTexts[6] != "" {
			description = "Due: " + cellTexts[6]
		}

		results = append(results, models.Opportunity{
			Title:       title,
			URL:         oppURL,
			Description: description,
			Source:      a.Name(),
			Agency:      agency,
			FetchedAt:   timeNow(),
		})
	})

	return results
}

// maxPageIndex reads the pager's hidden max-page field, 0 when absent.
func (a *InforAdapter) maxPageIndex(doc *goquery.Document) int {
	value, ok := doc.Find(fmt.Sprintf(`input[name=%q]`, inforMaxPageField)).First().Attr("value")
	if !ok {
		return 0
	}

	maxPage, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}

	return maxPage
}

// hiddenFormFields collects every hidden input so pagination POSTs
// carry the server's form state.
func hiddenFormFields(doc *goquery.Document) url.Values {
	form := url.Values{}

	doc.Find(`input[type="hidden"]`).Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}

		value, _ := input.Attr("value")
		form.Set(name, value)
	})

	return form
}
