package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSerperAdapter_Fetch(t *testing.T) {
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q, want %q", got, "test-key")
		}

		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}

		w.Write([]byte(`{
			"organic": [
				{
					"title": "  City of Mesa Permitting Software RFP  ",
					"link": "https://procurement.example.gov/rfp/123",
					"snippet": "Request for proposals for a permitting system.",
					"date": "2 days ago"
				},
				{
					"title": "County Licensing Platform Solicitation",
					"link": "https://bids.example.org/456",
					"snippet": "",
					"date": ""
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewSerperAdapter(newTestFetcher(t), "test-key", []string{`"permitting software" RFP`}, 2)
	adapter.SetEndpoint(server.URL)

	results, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if gotPayload["q"] != `"permitting software" RFP` {
		t.Errorf("query = %v, want the configured query", gotPayload["q"])
	}

	if gotPayload["tbs"] != "qdr:d2" {
		t.Errorf("tbs = %v, want qdr:d2", gotPayload["tbs"])
	}

	first := results[0]
	if first.Title != "City of Mesa Permitting Software RFP" {
		t.Errorf("title = %q, want trimmed title", first.Title)
	}

	if first.URL != "https://procurement.example.gov/rfp/123" {
		t.Errorf("url = %q", first.URL)
	}

	if first.Source != "Google / Serper" {
		t.Errorf("source = %q, want Google / Serper", first.Source)
	}

	if first.PostedDate != "2 days ago" {
		t.Errorf("posted date = %q", first.PostedDate)
	}
}

func TestSerperAdapter_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}

		if payload["q"] == "bad query" {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		w.Write([]byte(`{"organic":[{"title":"Good Result","link":"https://example.gov/1"}]}`))
	}))
	defer server.Close()

	adapter := NewSerperAdapter(newTestFetcher(t), "test-key", []string{"good query", "bad query"}, 2)
	adapter.SetEndpoint(server.URL)

	results, err := adapter.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected an error for the failed query")
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 from the successful query", len(results))
	}

	if results[0].Title != "Good Result" {
		t.Errorf("title = %q", results[0].Title)
	}
}
