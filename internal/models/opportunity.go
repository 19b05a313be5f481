// Package models defines data structures shared across the scanner pipeline.
package models

import "time"

// Source names as reported in the digest. Each adapter tags the
// opportunities it produced with exactly one of these.
const (
	SourceSerper      = "Google / Serper"
	SourceBidNet      = "BidNet Direct"
	SourceSAMGov      = "SAM.gov"
	SourceOpenGov     = "OpenGov"
	SourceTennessee   = "Tennessee Procurement"
	SourceUSASpending = "USASpending"
)

// Opportunity is the canonical procurement listing record. Adapters map
// their provider-specific raw shapes into this type; everything
// downstream (scoring, dedup, digest) only sees Opportunity.
type Opportunity struct {
	FetchedAt   time.Time `json:"fetchedAt"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Agency      string    `json:"agency"`
	PostedDate  string    `json:"postedDate"`
}

// ScoredOpportunity is an Opportunity with its relevance score.
// Scores are recomputed every run and never persisted.
type ScoredOpportunity struct {
	Opportunity

	Score int `json:"score"`
}
