// Package dedup filters out opportunities that were already reported,
// either in a previous run (persisted seen set) or earlier in the
// current run (two adapters finding the same listing).
package dedup

import (
	"time"

	"rfpscout/internal/models"
	"rfpscout/internal/seenstore"
	"rfpscout/pkg/urlkey"
)

// FilterNew walks the scored batch in order and returns the
// opportunities whose canonical URL is not yet in the seen set. Each
// accepted URL is inserted into the set immediately, so a duplicate
// appearing later in the same batch is suppressed even on a fresh set.
// Opportunities with an empty canonical key are dropped.
//
// The set is mutated in place; the caller persists it after the run.
func FilterNew(scored []models.ScoredOpportunity, seen *seenstore.Set, now time.Time) []models.ScoredOpportunity {
	var accepted []models.ScoredOpportunity

	for _, opp := range scored {
		key := urlkey.Canonical(opp.URL)
		if key == "" {
			continue
		}

		if seen.Contains(key) {
			continue
		}

		seen.Add(key, now)
		accepted = append(accepted, opp)
	}

	return accepted
}
