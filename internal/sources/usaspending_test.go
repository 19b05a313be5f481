package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUSASpendingAdapter_Fetch(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	defer func() { timeNow = restore }()

	var gotRequest map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		w.Write([]byte(`{
			"results": [
				{
					"generated_internal_id": "CONT_AWD_123",
					"Description": "CASE MANAGEMENT SOFTWARE LICENSES AND SUPPORT",
					"Recipient Name": "ACME GOVTECH LLC",
					"Awarding Agency": "Department of Veterans Affairs",
					"End Date": "2026-09-30"
				},
				{
					"generated_internal_id": "CONT_AWD_456",
					"Description": "",
					"End Date": "2026-11-01"
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewUSASpendingAdapter(newTestFetcher(t), []string{"case management software"})
	adapter.SetEndpoint(server.URL)

	results, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	filters, ok := gotRequest["filters"].(map[string]any)
	if !ok {
		t.Fatalf("request has no filters: %v", gotRequest)
	}

	periods, ok := filters["time_period"].([]any)
	if !ok || len(periods) != 1 {
		t.Fatalf("time_period = %v, want one window", filters["time_period"])
	}

	period := periods[0].(map[string]any)
	if period["start_date"] != "2026-03-10" || period["end_date"] != "2027-03-10" {
		t.Errorf("time window = %v..%v, want a 12 month window", period["start_date"], period["end_date"])
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (empty description dropped)", len(results))
	}

	opp := results[0]
	if opp.Title != "CASE MANAGEMENT SOFTWARE LICENSES AND SUPPORT" {
		t.Errorf("title = %q", opp.Title)
	}

	if opp.URL != "https://www.usaspending.gov/award/CONT_AWD_123" {
		t.Errorf("url = %q", opp.URL)
	}

	if opp.PostedDate != "2026-09-30" {
		t.Errorf("posted date = %q, want the contract end date", opp.PostedDate)
	}

	if opp.Description != "Current contractor: ACME GOVTECH LLC" {
		t.Errorf("description = %q", opp.Description)
	}

	if opp.Agency != "Department of Veterans Affairs" {
		t.Errorf("agency = %q", opp.Agency)
	}
}
