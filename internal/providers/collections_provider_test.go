package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"heritage-experiment/concordance/internal/constants"
)

func TestFetchRecords_BareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"@id":"https://collections.example.org/items/1","title":"A"},{"o:id":2,"title":"B"}]`))
	}))
	defer server.Close()

	provider := NewCollectionsProvider()
	records, status, err := provider.FetchRecords(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("unexpected status %d", status)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ItemID() != "https://collections.example.org/items/1" {
		t.Errorf("unexpected item id %q", records[0].ItemID())
	}
	// Numeric o:id fallback flattens to its decimal form.
	if records[1].ItemID() != "2" {
		t.Errorf("unexpected item id %q", records[1].ItemID())
	}
}

func TestFetchRecords_ItemsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"title":"Wrapped"}]}`))
	}))
	defer server.Close()

	provider := NewCollectionsProvider()
	records, _, err := provider.FetchRecords(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 1 || records[0]["title"] != "Wrapped" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestFetchRecords_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	provider := NewCollectionsProvider()
	_, _, err := provider.FetchRecords(context.Background(), server.URL)
	if providerCode(err) != constants.ErrCodeMalformedPayload {
		t.Fatalf("expected malformed-payload error, got %v", err)
	}
}

func TestFetchRecords_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewCollectionsProvider()
	_, status, err := provider.FetchRecords(context.Background(), server.URL)
	if status != http.StatusInternalServerError {
		t.Errorf("unexpected status %d", status)
	}
	if providerCode(err) != constants.ErrCodeNetworkError {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchIgnoreConfig_NoURLConfigured(t *testing.T) {
	provider := &CollectionsProvider{Client: http.DefaultClient}

	cfg, err := provider.FetchIgnoreConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config without URL, got %+v", cfg)
	}
}

func TestFetchIgnoreConfig_Fetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ignoredKeyPatterns":["internal_","@context"]}`))
	}))
	defer server.Close()

	provider := &CollectionsProvider{ConfigURL: server.URL, Client: http.DefaultClient}
	cfg, err := provider.FetchIgnoreConfig(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(cfg.IgnoredKeyPatterns) != 2 || cfg.IgnoredKeyPatterns[0] != "internal_" {
		t.Errorf("unexpected patterns %v", cfg.IgnoredKeyPatterns)
	}
}
