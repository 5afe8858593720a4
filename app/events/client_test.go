package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, &http.Client{Timeout: 5 * time.Second},
		NewNormalizer(), "Spota Server Test/1.0", 50)
}

func TestClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("Expected limit=50, got %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_count": 2, "results": [
			{"id": "1", "title": "Concert", "qfap_tags": "Musique"},
			{"id": "2", "title": "Expo", "qfap_tags": "Expositions"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Fetch(context.Background(), FetchOptions{})

	if result.Status != StatusOK {
		t.Errorf("Expected status %s, got %s", StatusOK, result.Status)
	}
	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result.Events))
	}
	if result.Events[0].Title != "Concert" {
		t.Errorf("Expected 'Concert', got '%s'", result.Events[0].Title)
	}
	if result.Events[1].Category != CategoryArt {
		t.Errorf("Expected %s, got %s", CategoryArt, result.Events[1].Category)
	}
}

func TestClient_Fetch_ServerErrorDegradesToPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Fetch(context.Background(), FetchOptions{})

	if result.Status != StatusDegraded {
		t.Errorf("Expected status %s, got %s", StatusDegraded, result.Status)
	}
	if len(result.Events) != 1 {
		t.Fatalf("Expected single placeholder event, got %d", len(result.Events))
	}
	if result.Events[0].ID != "fallback-1" {
		t.Errorf("Expected placeholder event, got ID '%s'", result.Events[0].ID)
	}
}

func TestClient_Fetch_MalformedResponseDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Fetch(context.Background(), FetchOptions{})

	if result.Status != StatusDegraded {
		t.Errorf("Expected status %s for missing results array, got %s", StatusDegraded, result.Status)
	}
}

func TestClient_Fetch_UnreachableServerDegrades(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	result := client.Fetch(context.Background(), FetchOptions{})

	if result.Status != StatusDegraded {
		t.Errorf("Expected status %s, got %s", StatusDegraded, result.Status)
	}
	if len(result.Events) != 1 {
		t.Errorf("Expected single placeholder event, got %d", len(result.Events))
	}
}

func TestClient_Fetch_TrimsToLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_count": 3, "results": [
			{"id": "1"}, {"id": "2"}, {"id": "3"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Fetch(context.Background(), FetchOptions{Limit: 2})

	if len(result.Events) != 2 {
		t.Errorf("Expected 2 events after trimming, got %d", len(result.Events))
	}
}

func TestClient_Fetch_FilterParameters(t *testing.T) {
	var capturedWhere string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedWhere = r.URL.Query().Get("where")
		w.Write([]byte(`{"total_count": 0, "results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.Fetch(context.Background(), FetchOptions{FreeOnly: true, Category: "musique"})

	expected := `price_type="gratuit" AND qfap_tags LIKE "%musique%"`
	if capturedWhere != expected {
		t.Errorf("Expected where clause %q, got %q", expected, capturedWhere)
	}
}

func TestClient_Search_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") != "jazz" {
			t.Errorf("Expected search=jazz, got %s", r.URL.Query().Get("search"))
		}
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("Expected limit=20, got %s", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`{"total_count": 1, "results": [{"id": "1", "title": "Soirée jazz"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "jazz")

	if result.Status != StatusOK {
		t.Errorf("Expected status %s, got %s", StatusOK, result.Status)
	}
	if len(result.Events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(result.Events))
	}
}

func TestClient_Search_EmptyMatchIsOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_count": 0, "results": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "introuvable")

	if result.Status != StatusOK {
		t.Errorf("Expected status %s for successful empty search, got %s", StatusOK, result.Status)
	}
	if len(result.Events) != 0 {
		t.Errorf("Expected no events, got %d", len(result.Events))
	}
}

func TestClient_Search_FailureReturnsEmptyNotPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result := client.Search(context.Background(), "jazz")

	if result.Status != StatusEmpty {
		t.Errorf("Expected status %s, got %s", StatusEmpty, result.Status)
	}
	if len(result.Events) != 0 {
		t.Errorf("Expected no events on failed search, got %d", len(result.Events))
	}
}

func TestBuildWhereClause(t *testing.T) {
	tests := []struct {
		opts     FetchOptions
		expected string
	}{
		{FetchOptions{}, ""},
		{FetchOptions{FreeOnly: true}, `price_type="gratuit"`},
		{FetchOptions{Category: "sport"}, `qfap_tags LIKE "%sport%"`},
		{FetchOptions{FreeOnly: true, Category: "sport"}, `price_type="gratuit" AND qfap_tags LIKE "%sport%"`},
	}

	for _, tt := range tests {
		result := buildWhereClause(tt.opts)
		if result != tt.expected {
			t.Errorf("buildWhereClause(%+v): expected %q, got %q", tt.opts, tt.expected, result)
		}
	}
}
