package digest

import (
	"testing"
	"time"

	"rfpscout/internal/models"
)

func scored(title string, score int) models.ScoredOpportunity {
	return models.ScoredOpportunity{
		Opportunity: models.Opportunity{Title: title, URL: "https://example.gov/" + title},
		Score:       score,
	}
}

func TestSortByScore(t *testing.T) {
	items := []models.ScoredOpportunity{
		scored("zeta permitting", 60),
		scored("Alpha licensing", 90),
		scored("beta casework", 60),
		scored("Gamma intake", 75),
	}

	SortByScore(items)

	want := []string{"Alpha licensing", "Gamma intake", "beta casework", "zeta permitting"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Title, title)
		}
	}
}

func TestSortByScore_TiesAreCaseInsensitive(t *testing.T) {
	items := []models.ScoredOpportunity{
		scored("b second", 50),
		scored("A first", 50),
		scored("C third", 50),
	}

	SortByScore(items)

	want := []string{"A first", "b second", "C third"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Title, title)
		}
	}
}

func TestSubject(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		newCount      int
		expiringCount int
		want          string
	}{
		{
			name:     "plural",
			newCount: 4,
			want:     "RFP Scout: 4 new opportunities — March 10, 2026",
		},
		{
			name:     "singular",
			newCount: 1,
			want:     "RFP Scout: 1 new opportunity — March 10, 2026",
		},
		{
			name:          "with expiring contracts",
			newCount:      3,
			expiringCount: 2,
			want:          "RFP Scout: 3 new opportunities + 2 expiring contracts — March 10, 2026",
		},
		{
			name:     "zero results",
			newCount: 0,
			want:     "RFP Scout: 0 new opportunities — March 10, 2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subject("RFP Scout", tt.newCount, tt.expiringCount, now)
			if got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateEllipsis(t *testing.T) {
	if got := truncateEllipsis("short", 10); got != "short" {
		t.Errorf("got %q, want untouched string", got)
	}

	if got := truncateEllipsis("abcdefgh", 5); got != "abcde…" {
		t.Errorf("got %q, want %q", got, "abcde…")
	}

	// Rune boundaries are respected for multibyte text.
	if got := truncateEllipsis("héllo wörld", 7); got != "héllo w…" {
		t.Errorf("got %q, want %q", got, "héllo w…")
	}
}
