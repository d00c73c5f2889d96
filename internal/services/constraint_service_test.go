package services

import (
	"context"
	"sync/atomic"
	"testing"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/providers"
)

// mockKBProvider implements providers.KnowledgeBaseProvider with function fields
type mockKBProvider struct {
	searchEntitiesFunc         func(ctx context.Context, query string) ([]dtos.MatchRef, int, error)
	getPropertyConstraintsFunc func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error)
	searchLanguagesFunc        func(ctx context.Context, query string) ([]dtos.LanguageRef, int, error)
}

func (m *mockKBProvider) SearchEntities(ctx context.Context, query string) ([]dtos.MatchRef, int, error) {
	return m.searchEntitiesFunc(ctx, query)
}

func (m *mockKBProvider) GetPropertyConstraints(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
	return m.getPropertyConstraintsFunc(ctx, propertyID)
}

func (m *mockKBProvider) SearchLanguages(ctx context.Context, query string) ([]dtos.LanguageRef, int, error) {
	return m.searchLanguagesFunc(ctx, query)
}

func (m *mockKBProvider) GetProviderType() string {
	return "mock"
}

func TestConstraintGet_CachesSuccessfulFetches(t *testing.T) {
	var calls int32
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			atomic.AddInt32(&calls, 1)
			return &dtos.PropertyRef{ID: propertyID, Label: "instance of", Datatype: "wikibase-item"}, 200, nil
		},
	}
	svc := NewConstraintService(kb, common.NewCacheService(60, 600), nil)

	for i := 0; i < 3; i++ {
		prop, err := svc.Get(context.Background(), "P31")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if prop.ID != "P31" {
			t.Fatalf("unexpected property %+v", prop)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 provider call, got %d", got)
	}
}

func TestConstraintGet_FailuresNotCached(t *testing.T) {
	var calls int32
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			n := atomic.AddInt32(&calls, 1)
			if n == 1 {
				return nil, 503, &providers.ProviderError{
					Code:    constants.ErrCodeNetworkError,
					Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
				}
			}
			return &dtos.PropertyRef{ID: propertyID}, 200, nil
		},
	}
	svc := NewConstraintService(kb, common.NewCacheService(60, 600), nil)

	if _, err := svc.Get(context.Background(), "P1476"); err == nil {
		t.Fatal("expected first fetch to fail")
	}

	// The failure must not be cached: the retry goes back to the provider.
	prop, err := svc.Get(context.Background(), "P1476")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if prop.ID != "P1476" {
		t.Fatalf("unexpected property %+v", prop)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 provider calls, got %d", got)
	}
}

func TestFetchBatch_PartialFailure(t *testing.T) {
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			if propertyID == "P1476" {
				return nil, 503, &providers.ProviderError{
					Code:    constants.ErrCodeConstraintFetchError,
					Message: constants.GetErrorMessage(constants.ErrCodeConstraintFetchError),
				}
			}
			return &dtos.PropertyRef{ID: propertyID, Datatype: "wikibase-item"}, 200, nil
		},
	}
	svc := NewConstraintService(kb, common.NewCacheService(60, 600), nil)

	results, failures := svc.FetchBatch(context.Background(), []string{"P1476", "P31"})

	// One failure never blocks the sibling: P31 stays usable.
	if len(results) != 1 {
		t.Fatalf("expected 1 success, got %d", len(results))
	}
	if _, ok := results["P31"]; !ok {
		t.Error("expected P31 in results")
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].PropertyID != "P1476" {
		t.Errorf("expected P1476 failure, got %s", failures[0].PropertyID)
	}
}

func TestFetchBatch_FailuresSorted(t *testing.T) {
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			return nil, 503, &providers.ProviderError{
				Code:    constants.ErrCodeConstraintFetchError,
				Message: constants.GetErrorMessage(constants.ErrCodeConstraintFetchError),
			}
		},
	}
	svc := NewConstraintService(kb, common.NewCacheService(60, 600), nil)

	_, failures := svc.FetchBatch(context.Background(), []string{"P973", "P243", "P8091"})

	if len(failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(failures))
	}
	for i := 1; i < len(failures); i++ {
		if failures[i-1].PropertyID > failures[i].PropertyID {
			t.Errorf("failures not sorted: %s before %s", failures[i-1].PropertyID, failures[i].PropertyID)
		}
	}
}

func TestAutoMap_PartialBatch(t *testing.T) {
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			if propertyID == "P1476" {
				return nil, 503, &providers.ProviderError{
					Code:    constants.ErrCodeConstraintFetchError,
					Message: constants.GetErrorMessage(constants.ErrCodeConstraintFetchError),
				}
			}
			return &dtos.PropertyRef{ID: propertyID, Datatype: "wikibase-item"}, 200, nil
		},
	}
	constraintSvc := NewConstraintService(kb, common.NewCacheService(60, 600), nil)
	svc := NewMappingService(constraintSvc)

	state := NewMappingState()
	svc.Seed(state, []dtos.MappingKey{
		{Key: "title", Category: dtos.CategoryNonLinked},
		{Key: "type", Category: dtos.CategoryNonLinked},
	})

	titleProp := "P1476"
	typeProp := "P31"
	summary := svc.AutoMap(context.Background(), state, map[string]dtos.Classification{
		"title": {Type: dtos.IdentifierUnknown, PropertyID: &titleProp},
		"type":  {Type: dtos.IdentifierUnknown, PropertyID: &typeProp},
	})

	if summary.MappedCount != 1 {
		t.Errorf("expected 1 mapped, got %d", summary.MappedCount)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].PropertyID != "P1476" {
		t.Fatalf("expected single P1476 failure, got %+v", summary.Failures)
	}
	if summary.Failures[0].Key != "title" {
		t.Errorf("expected failure attributed to title, got %s", summary.Failures[0].Key)
	}

	// The successful mapping is immediately usable.
	mappingID := state.KeyMappings["type"]
	if mappingID == "" {
		t.Fatal("expected type to be mapped")
	}
	if state.Mappings[mappingID].Property.ID != "P31" {
		t.Errorf("unexpected mapped property %+v", state.Mappings[mappingID].Property)
	}
	if !state.Mappings[mappingID].AutoMapped {
		t.Error("expected auto-mapped flag set")
	}
	if _, mapped := state.KeyMappings["title"]; mapped {
		t.Error("failed fetch must not produce a mapping")
	}
}
