package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"rfpscout/internal/logger"
	"rfpscout/internal/models"
)

// stubAdapter is a canned adapter for runner tests.
type stubAdapter struct {
	name    string
	results []models.Opportunity
	err     error
	delay   time.Duration
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(_ context.Context) ([]models.Opportunity, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	return s.results, s.err
}

func opp(title, source string) models.Opportunity {
	return models.Opportunity{Title: title, URL: "https://example.gov/" + title, Source: source}
}

func TestRunner_MergesInRegistrationOrder(t *testing.T) {
	// The slower first adapter finishes last; merge order must still
	// follow registration order, not completion order.
	runner := NewRunner(logger.NewLogger("error"),
		&stubAdapter{
			name:    "slow",
			results: []models.Opportunity{opp("a1", "slow"), opp("a2", "slow")},
			delay:   30 * time.Millisecond,
		},
		&stubAdapter{
			name:    "fast",
			results: []models.Opportunity{opp("b1", "fast")},
		},
	)

	merged, failures := runner.FetchAll(context.Background())

	if len(failures) != 0 {
		t.Fatalf("failures = %v, want none", failures)
	}

	want := []string{"a1", "a2", "b1"}
	if len(merged) != len(want) {
		t.Fatalf("got %d results, want %d", len(merged), len(want))
	}

	for i, title := range want {
		if merged[i].Title != title {
			t.Errorf("merged[%d] = %q, want %q", i, merged[i].Title, title)
		}
	}
}

func TestRunner_FailureIsolation(t *testing.T) {
	fetchErr := errors.New("portal unreachable")

	runner := NewRunner(logger.NewLogger("error"),
		&stubAdapter{name: "healthy", results: []models.Opportunity{opp("ok", "healthy")}},
		&stubAdapter{name: "broken", err: fetchErr},
	)

	merged, failures := runner.FetchAll(context.Background())

	if len(merged) != 1 || merged[0].Title != "ok" {
		t.Fatalf("merged = %+v, want the healthy adapter's result", merged)
	}

	if !errors.Is(failures["broken"], fetchErr) {
		t.Errorf("failures[broken] = %v, want %v", failures["broken"], fetchErr)
	}

	if _, present := failures["healthy"]; present {
		t.Error("healthy adapter must not appear in failures")
	}
}

func TestRunner_PartialResultsFromFailedAdapter(t *testing.T) {
	fetchErr := errors.New("second keyword timed out")

	runner := NewRunner(logger.NewLogger("error"),
		&stubAdapter{
			name:    "flaky",
			results: []models.Opportunity{opp("partial", "flaky")},
			err:     fetchErr,
		},
	)

	merged, failures := runner.FetchAll(context.Background())

	if len(merged) != 1 {
		t.Fatalf("got %d results, want the partial result kept", len(merged))
	}

	if !errors.Is(failures["flaky"], fetchErr) {
		t.Errorf("failures[flaky] = %v, want %v", failures["flaky"], fetchErr)
	}
}

func TestRunner_NoAdapters(t *testing.T) {
	runner := NewRunner(logger.NewLogger("error"))

	merged, failures := runner.FetchAll(context.Background())

	if len(merged) != 0 || len(failures) != 0 {
		t.Errorf("merged = %v, failures = %v; want empty", merged, failures)
	}
}
