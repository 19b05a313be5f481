package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenGovAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "open" {
			t.Errorf("status = %q, want open", got)
		}

		w.Write([]byte(`{
			"opportunities": [
				{
					"title": "Grants Management Platform",
					"url": "/opportunities/789",
					"description": "SaaS grants management for a mid-size city.",
					"published_at": "2026-03-09",
					"entity_name": "City of Boulder"
				},
				{
					"name": "Workflow System RFP",
					"permalink": "https://procurement.opengov.com/opportunities/790",
					"entity_name": "Town of Gilbert"
				},
				{
					"description": "record with no title or link is dropped"
				}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewOpenGovAdapter(newTestFetcher(t), []string{"grants management"})
	adapter.SetEndpoint(server.URL)

	results, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.Title != "Grants Management Platform" {
		t.Errorf("title = %q", first.Title)
	}

	if first.URL != "https://procurement.opengov.com/opportunities/789" {
		t.Errorf("url = %q, want relative link resolved", first.URL)
	}

	if first.Agency != "City of Boulder" {
		t.Errorf("agency = %q", first.Agency)
	}

	// Alternate field vocabulary maps the same way.
	second := results[1]
	if second.Title != "Workflow System RFP" {
		t.Errorf("title = %q", second.Title)
	}

	if second.URL != "https://procurement.opengov.com/opportunities/790" {
		t.Errorf("url = %q", second.URL)
	}
}

func TestOpenGovAdapter_ResultsVocabulary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"title":"Intake Portal","url":"https://example.gov/1"}]}`))
	}))
	defer server.Close()

	adapter := NewOpenGovAdapter(newTestFetcher(t), []string{"intake"})
	adapter.SetEndpoint(server.URL)

	results, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(results) != 1 || results[0].Title != "Intake Portal" {
		t.Fatalf("unexpected results: %+v", results)
	}
}
