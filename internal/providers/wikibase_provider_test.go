package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

func testProvider(handler http.HandlerFunc) (*WikibaseProvider, *httptest.Server) {
	server := httptest.NewServer(handler)
	provider := NewWikibaseProvider()
	provider.BaseURL = server.URL
	return provider, server
}

func providerCode(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code
	}
	return ""
}

func TestSearchEntities(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/entities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "jane smith" {
			t.Errorf("unexpected query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"search":[
			{"id":"Q42","label":"Jane Smith","description":"photographer","score":91.3},
			{"id":"Q77","label":"Jane Smith (author)","score":44.0}
		]}`))
	})
	defer server.Close()

	matches, status, err := provider.SearchEntities(context.Background(), "jane smith")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("unexpected status %d", status)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Type != dtos.MatchEntity || matches[0].ID != "Q42" || matches[0].Score != 91.3 {
		t.Errorf("unexpected match %+v", matches[0])
	}
	if matches[0].Datatype != string(constants.DatatypeItem) {
		t.Errorf("unexpected datatype %q", matches[0].Datatype)
	}
}

func TestSearchEntities_EmptyQuery(t *testing.T) {
	provider := NewWikibaseProvider()
	_, _, err := provider.SearchEntities(context.Background(), "")
	if providerCode(err) != constants.ErrCodeEmptyQuery {
		t.Fatalf("expected empty-query error, got %v", err)
	}
}

func TestGetPropertyConstraints(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/properties/P243" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"P243","label":"OCLC control number","datatype":"external-id",
			"constraints":[
				{"type":"format","rank":"mandatory","params":{"pattern":"[1-9]\\d*"}},
				{"type":"format","rank":"preferred","params":{"pattern":"\\d+"}},
				{"type":"value-type","rank":"regular","params":{"classes":["Q7725634"]}},
				{"type":"single-value","rank":"regular","params":{}}
			]
		}`))
	})
	defer server.Close()

	prop, _, err := provider.GetPropertyConstraints(context.Background(), "P243")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if prop.ID != "P243" || prop.Datatype != "external-id" {
		t.Fatalf("unexpected property %+v", prop)
	}
	if prop.DatatypeLabel != "External identifier" {
		t.Errorf("unexpected datatype label %q", prop.DatatypeLabel)
	}

	if len(prop.Constraints.Format) != 2 {
		t.Fatalf("expected 2 format constraints, got %d", len(prop.Constraints.Format))
	}
	if prop.Constraints.Format[0].Rank != dtos.ConstraintRankMandatory {
		t.Errorf("unexpected rank %s", prop.Constraints.Format[0].Rank)
	}
	// Unknown ranks normalize to regular.
	if prop.Constraints.Format[1].Rank != dtos.ConstraintRankRegular {
		t.Errorf("unexpected normalized rank %s", prop.Constraints.Format[1].Rank)
	}
	if len(prop.Constraints.ValueType) != 1 || prop.Constraints.ValueType[0] != "Q7725634" {
		t.Errorf("unexpected value-type constraints %v", prop.Constraints.ValueType)
	}
	// Uninterpreted constraint types are kept by name.
	if len(prop.Constraints.Other) != 1 || prop.Constraints.Other[0] != "single-value" {
		t.Errorf("unexpected other constraints %v", prop.Constraints.Other)
	}
}

func TestGetPropertyConstraints_NotFound(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such property", http.StatusNotFound)
	})
	defer server.Close()

	_, status, err := provider.GetPropertyConstraints(context.Background(), "P99999")
	if status != http.StatusNotFound {
		t.Errorf("unexpected status %d", status)
	}
	if providerCode(err) != constants.ErrCodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDoGET_RateLimited(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	defer server.Close()

	_, _, err := provider.SearchEntities(context.Background(), "anything")
	if providerCode(err) != constants.ErrCodeRateLimited {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
}

func TestDoGET_MalformedPayload(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"search": [`))
	})
	defer server.Close()

	_, _, err := provider.SearchEntities(context.Background(), "anything")
	if providerCode(err) != constants.ErrCodeMalformedPayload {
		t.Fatalf("expected malformed-payload error, got %v", err)
	}
}

func TestSearchLanguages(t *testing.T) {
	provider, server := testProvider(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/languages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"results":[{"code":"fr","label":"French"},{"code":"frc","label":"Cajun French"}]}`))
	})
	defer server.Close()

	langs, _, err := provider.SearchLanguages(context.Background(), "fre")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(langs) != 2 || langs[0].Code != "fr" {
		t.Fatalf("unexpected languages %+v", langs)
	}
}
