package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"rfpscout/internal/models"
)

// BuildText renders the plaintext alternative body.
func BuildText(d Digest) string {
	var lines []string

	count := len(d.Opportunities)

	noun := "opportunities"
	if count == 1 {
		noun = "opportunity"
	}

	lines = append(lines,
		fmt.Sprintf("RFP Scout — Daily Digest — %s", d.GeneratedAt.Format("January 2, 2006")),
		strings.Repeat("=", 55),
		"",
		fmt.Sprintf("%d new %s found", count, noun),
		"",
	)

	lines = append(lines, sourceCountTable(d.Opportunities)...)

	for i, opp := range d.Opportunities {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, opp.Title))
		lines = append(lines, "   Source : "+opp.Source)
		lines = append(lines, fmt.Sprintf("   Score  : %d/100", opp.Score))

		if opp.Agency != "" {
			lines = append(lines, "   Agency : "+opp.Agency)
		}

		if opp.PostedDate != "" {
			lines = append(lines, "   Posted : "+opp.PostedDate)
		}

		if opp.Description != "" {
			lines = append(lines, "   "+truncateEllipsis(opp.Description, 180))
		}

		lines = append(lines, "   Link   : "+opp.URL, "")
	}

	if len(d.Expiring) > 0 {
		lines = append(lines,
			"",
			"EXPIRING FEDERAL CONTRACTS — Likely Upcoming RFPs",
			strings.Repeat("-", 55),
			"Contracts expiring within 12 months. Agencies typically",
			"issue RFPs 3-6 months before expiry.",
			"",
		)

		for i, opp := range d.Expiring {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, opp.Title))

			if opp.Agency != "" {
				lines = append(lines, "   Agency  : "+opp.Agency)
			}

			if opp.PostedDate != "" {
				lines = append(lines, "   Expires : "+opp.PostedDate)
			}

			if opp.Description != "" {
				lines = append(lines, "   "+truncateEllipsis(opp.Description, 200))
			}

			lines = append(lines, "   Link    : "+opp.URL, "")
		}
	}

	return strings.Join(lines, "\n")
}

// sourceCountTable renders per-source counts as an aligned two-column
// block. Display-width padding keeps source names with wide runes
// aligned.
func sourceCountTable(opportunities []models.ScoredOpportunity) []string {
	if len(opportunities) == 0 {
		return nil
	}

	bySource := make(map[string]int)

	for _, opp := range opportunities {
		source := opp.Source
		if source == "" {
			source = "Other"
		}

		bySource[source]++
	}

	names := make([]string, 0, len(bySource))

	widest := 0
	for name := range bySource {
		names = append(names, name)

		if w := runewidth.StringWidth(name); w > widest {
			widest = w
		}
	}

	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("   %s  %d",
			runewidth.FillRight(name, widest), bySource[name]))
	}

	return append(lines, "")
}
