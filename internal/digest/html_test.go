package digest

import (
	"strings"
	"testing"
	"time"

	"rfpscout/internal/models"
)

func sampleDigest() Digest {
	return Digest{
		Opportunities: []models.ScoredOpportunity{
			{
				Opportunity: models.Opportunity{
					Title:       "Case Management Platform RFP",
					URL:         "https://example.gov/rfp/1",
					Description: "Statewide case management replacement.",
					Source:      models.SourceSAMGov,
					Agency:      "General Services",
					PostedDate:  "2026-03-09",
				},
				Score: 85,
			},
			{
				Opportunity: models.Opportunity{
					Title:  "Permitting Portal",
					URL:    "https://example.gov/rfp/2",
					Source: models.SourceBidNet,
				},
				Score: 55,
			},
		},
		GeneratedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestBuildHTML(t *testing.T) {
	out := BuildHTML(sampleDigest(), 250)

	for _, want := range []string{
		"2 new opportunities found",
		"Case Management Platform RFP",
		"https://example.gov/rfp/1",
		"High match",
		"Medium match",
		"March 10, 2026",
		"BidNet Direct: <strong>1</strong>",
		"SAM.gov: <strong>1</strong>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if strings.Contains(out, "Expiring Federal Contracts") {
		t.Error("expiring section rendered with no expiring contracts")
	}
}

func TestBuildHTML_ExpiringSection(t *testing.T) {
	d := sampleDigest()
	d.Expiring = []models.Opportunity{
		{
			Title:      "CASE MANAGEMENT SUPPORT SERVICES",
			URL:        "https://www.usaspending.gov/award/CONT_AWD_1",
			Source:     models.SourceUSASpending,
			Agency:     "Department of Labor",
			PostedDate: "2026-11-30",
		},
	}

	out := BuildHTML(d, 250)

	for _, want := range []string{
		"Expiring Federal Contracts",
		"CASE MANAGEMENT SUPPORT SERVICES",
		"Expires: 2026-11-30",
		"View on USASpending",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestBuildHTML_EscapesContent(t *testing.T) {
	d := Digest{
		Opportunities: []models.ScoredOpportunity{
			{
				Opportunity: models.Opportunity{
					Title:  `RFP <script>alert("x")</script> & Sons`,
					URL:    "https://example.gov/rfp/3",
					Source: models.SourceOpenGov,
				},
				Score: 50,
			},
		},
		GeneratedAt: time.Now(),
	}

	out := BuildHTML(d, 250)

	if strings.Contains(out, "<script>") {
		t.Error("title rendered without escaping")
	}

	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("expected escaped title in output")
	}
}

func TestBuildHTML_TruncatesDescription(t *testing.T) {
	d := Digest{
		Opportunities: []models.ScoredOpportunity{
			{
				Opportunity: models.Opportunity{
					Title:       "Long One",
					URL:         "https://example.gov/rfp/4",
					Source:      models.SourceSerper,
					Description: strings.Repeat("x", 300),
				},
				Score: 60,
			},
		},
		GeneratedAt: time.Now(),
	}

	out := BuildHTML(d, 250)

	if !strings.Contains(out, strings.Repeat("x", 250)+"…") {
		t.Error("expected description truncated at the configured limit")
	}

	if strings.Contains(out, strings.Repeat("x", 251)) {
		t.Error("description exceeds the configured limit")
	}
}

func TestBuildText(t *testing.T) {
	d := sampleDigest()
	d.Expiring = []models.Opportunity{
		{
			Title:      "LICENSING SYSTEM MAINTENANCE",
			URL:        "https://www.usaspending.gov/award/CONT_AWD_2",
			PostedDate: "2026-12-31",
		},
	}

	out := BuildText(d)

	for _, want := range []string{
		"RFP Scout — Daily Digest — March 10, 2026",
		"2 new opportunities found",
		"1. Case Management Platform RFP",
		"Score  : 85/100",
		"2. Permitting Portal",
		"EXPIRING FEDERAL CONTRACTS",
		"Expires : 2026-12-31",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text missing %q", want)
		}
	}
}

func TestBuildText_SourceCountsAligned(t *testing.T) {
	out := BuildText(sampleDigest())

	// Both counts land in the same column: names padded to the widest.
	if !strings.Contains(out, "BidNet Direct  1") {
		t.Errorf("missing aligned BidNet count in:\n%s", out)
	}

	if !strings.Contains(out, "SAM.gov        1") {
		t.Errorf("missing aligned SAM.gov count in:\n%s", out)
	}
}
