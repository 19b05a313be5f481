// Package digest renders the daily email digest and delivers it via
// the Resend API.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rfpscout/internal/models"
)

// Digest is everything one email carries: the scored opportunities
// and, separately, federal contracts expiring soon.
type Digest struct {
	Opportunities []models.ScoredOpportunity
	Expiring      []models.Opportunity
	GeneratedAt   time.Time
}

// SortByScore orders opportunities by descending score; ties break on
// case-insensitive title so a digest renders the same way every run.
func SortByScore(items []models.ScoredOpportunity) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}

		return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
	})
}

// Subject builds the email subject line, e.g.
// "RFP Scout: 4 new opportunities + 2 expiring contracts — March 10, 2026".
func Subject(prefix string, newCount, expiringCount int, now time.Time) string {
	noun := "opportunities"
	if newCount == 1 {
		noun = "opportunity"
	}

	expiringNote := ""
	if expiringCount > 0 {
		expiringNote = fmt.Sprintf(" + %d expiring contracts", expiringCount)
	}

	return fmt.Sprintf("%s: %d new %s%s — %s",
		prefix, newCount, noun, expiringNote, now.Format("January 2, 2006"))
}

// truncateEllipsis shortens s to at most n runes, appending an
// ellipsis when anything was cut.
func truncateEllipsis(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "…"
}
