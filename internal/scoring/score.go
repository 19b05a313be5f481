// Package scoring assigns relevance scores to opportunities based on
// keyword and phrase matching against the configured vocabulary.
package scoring

import (
	"strings"

	"rfpscout/internal/config"
	"rfpscout/internal/models"
)

// Scorer computes relevance scores. It is pure: the same opportunity
// and configuration always produce the same score, with no I/O.
type Scorer struct {
	required    []string
	procurement []string
	tech        []string
	bonus       map[string]int
	negative    map[string]int
	baseOnMatch int
	perRequired int
	requiredCap int
}

// NewScorer creates a scorer from the scoring configuration. All
// phrases are lowercased once up front; matching is case-insensitive
// substring search.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{
		required:    lowerAll(cfg.RequiredKeywords),
		procurement: lowerAll(cfg.ProcurementSignals),
		tech:        lowerAll(cfg.TechSignals),
		bonus:       lowerKeys(cfg.BonusPhrases),
		negative:    lowerKeys(cfg.NegativeKeywords),
		baseOnMatch: cfg.BaseOnMatch,
		perRequired: cfg.RequiredKeywordPoints,
		requiredCap: cfg.RequiredPointsCap,
	}
}

// Score returns the relevance score for an opportunity, clamped to
// [0, 100]. An opportunity matching no required keyword scores 0
// regardless of any other signal.
func (s *Scorer) Score(opp models.Opportunity) int {
	desc := opp.Description
	if desc == "" {
		desc = opp.Agency
	}

	fullText := strings.ToLower(opp.Title + " " + desc)
	titleText := strings.ToLower(opp.Title)

	requiredHits := 0
	for _, kw := range s.required {
		if strings.Contains(fullText, kw) {
			requiredHits++
		}
	}

	if requiredHits == 0 {
		return 0
	}

	score := s.baseOnMatch

	requiredPoints := requiredHits * s.perRequired
	if requiredPoints > s.requiredCap {
		requiredPoints = s.requiredCap
	}

	score += requiredPoints

	// Procurement language in the title is a stronger signal than in
	// the body.
	if containsAny(titleText, s.procurement) {
		score += 25
	} else if containsAny(fullText, s.procurement) {
		score += 10
	}

	if containsAny(fullText, s.tech) {
		score += 10
	}

	// Each bonus phrase counts once no matter how often it appears.
	for phrase, points := range s.bonus {
		if strings.Contains(fullText, phrase) {
			score += points
		}
	}

	for phrase, penalty := range s.negative {
		if strings.Contains(fullText, phrase) {
			score -= penalty
		}
	}

	if score < 0 {
		return 0
	}

	if score > 100 {
		return 100
	}

	return score
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}

	return false
}

func lowerAll(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = strings.ToLower(p)
	}

	return out
}

func lowerKeys(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}

	return out
}
