package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/db/repositories"
	"heritage-experiment/concordance/internal/models/dtos"
	gormModels "heritage-experiment/concordance/internal/models/gorm"
	"heritage-experiment/concordance/internal/providers"
)

func sessionRecords() []dtos.SourceRecord {
	return []dtos.SourceRecord{
		{
			"@id":        "https://collections.example.org/items/1",
			"identifier": "ark:/12345/x6",
			"title":      "Aerial photograph",
		},
		{
			"@id":        "https://collections.example.org/items/2",
			"identifier": "ark:/12345/x7",
			"title":      "Oral history interview",
		},
	}
}

func newTestProfileRepo(t *testing.T) *repositories.ProfileRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gormModels.MappingProfile{}, &gormModels.MappingProfileEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repositories.NewProfileRepository(db)
}

type sessionServices struct {
	sessions *SessionService
	mapping  *MappingService
}

func newTestSessionService(t *testing.T, records []dtos.SourceRecord, kb *mockKBProvider) sessionServices {
	t.Helper()

	source := &mockSourceProvider{
		fetchRecordsFunc: func(ctx context.Context, url string) ([]dtos.SourceRecord, int, error) {
			return records, 200, nil
		},
	}
	if kb == nil {
		kb = &mockKBProvider{
			getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
				return &dtos.PropertyRef{ID: propertyID, Label: "prop " + propertyID, Datatype: "external-id"}, 200, nil
			},
		}
	}

	classifier := NewClassifierService()
	constraints := NewConstraintService(kb, common.NewCacheService(60, 600), nil)
	mapping := NewMappingService(constraints)
	svc := NewSessionService(
		source,
		NewAnalyzerService(common.NewIgnoreConfigService(source)),
		classifier,
		mapping,
		NewReferenceService(classifier),
		newTestProfileRepo(t),
		nil,
	)
	return sessionServices{sessions: svc, mapping: mapping}
}

func TestCreateSession_AutoMapsIdentifiers(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)

	resp, err := env.sessions.CreateSession(context.Background(), dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if resp.SessionID == "" {
		t.Error("expected a session id")
	}
	if resp.ItemCount != 2 {
		t.Errorf("unexpected item count %d", resp.ItemCount)
	}
	// @id maps to the item-link property, identifier to the ARK property.
	if resp.AutoMapSummary.MappedCount != 2 {
		t.Errorf("expected 2 auto-mapped keys, got %d", resp.AutoMapSummary.MappedCount)
	}
	if len(resp.AutoMapSummary.Failures) != 0 {
		t.Errorf("unexpected failures %+v", resp.AutoMapSummary.Failures)
	}

	err = env.sessions.WithSession(resp.SessionID, func(session *Session) error {
		wantID := "identifier|" + constants.PropertyARKIdentifier
		if got := session.Mapping.KeyMappings["identifier"]; got != wantID {
			t.Errorf("unexpected mapping id %q", got)
		}
		if got := session.Mapping.KeyMappings["@id"]; got != "@id|"+constants.PropertyDescribedAtURL {
			t.Errorf("unexpected mapping id %q", got)
		}
		if _, mapped := session.Mapping.KeyMappings["title"]; mapped {
			t.Error("title must not be auto-mapped")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSession_AutoMapDisabled(t *testing.T) {
	var mu sync.Mutex
	var kbCalls int
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			mu.Lock()
			kbCalls++
			mu.Unlock()
			return &dtos.PropertyRef{ID: propertyID}, 200, nil
		},
	}
	env := newTestSessionService(t, sessionRecords(), kb)

	disabled := false
	resp, err := env.sessions.CreateSession(context.Background(), dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
		AutoMap:   &disabled,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.AutoMapSummary.MappedCount != 0 {
		t.Errorf("expected no auto-mapping, got %d", resp.AutoMapSummary.MappedCount)
	}

	mu.Lock()
	defer mu.Unlock()
	if kbCalls != 0 {
		t.Errorf("constraint fetches must be skipped, got %d calls", kbCalls)
	}
}

func TestCreateSession_PartialAutoMapKeepsSession(t *testing.T) {
	kb := &mockKBProvider{
		getPropertyConstraintsFunc: func(ctx context.Context, propertyID string) (*dtos.PropertyRef, int, error) {
			if propertyID == constants.PropertyARKIdentifier {
				return nil, 503, &providers.ProviderError{
					Code:    constants.ErrCodeConstraintFetchError,
					Message: constants.GetErrorMessage(constants.ErrCodeConstraintFetchError),
				}
			}
			return &dtos.PropertyRef{ID: propertyID}, 200, nil
		},
	}
	env := newTestSessionService(t, sessionRecords(), kb)

	resp, err := env.sessions.CreateSession(context.Background(), dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
	})
	if err != nil {
		t.Fatalf("a failed auto-map must not fail the session: %v", err)
	}
	if resp.AutoMapSummary.MappedCount != 1 {
		t.Errorf("expected 1 mapped key, got %d", resp.AutoMapSummary.MappedCount)
	}
	if len(resp.AutoMapSummary.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", resp.AutoMapSummary.Failures)
	}
	if resp.AutoMapSummary.Failures[0].PropertyID != constants.PropertyARKIdentifier {
		t.Errorf("unexpected failed property %q", resp.AutoMapSummary.Failures[0].PropertyID)
	}
}

func TestCreateSession_FetchFailurePropagates(t *testing.T) {
	source := &mockSourceProvider{
		fetchRecordsFunc: func(ctx context.Context, url string) ([]dtos.SourceRecord, int, error) {
			return nil, 502, &providers.ProviderError{
				Code:    constants.ErrCodeNetworkError,
				Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			}
		},
	}
	classifier := NewClassifierService()
	svc := NewSessionService(
		source,
		NewAnalyzerService(common.NewIgnoreConfigService(source)),
		classifier,
		NewMappingService(nil),
		NewReferenceService(classifier),
		newTestProfileRepo(t),
		nil,
	)

	_, err := svc.CreateSession(context.Background(), dtos.CreateSessionReq{SourceURL: "https://down.example.org"})
	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeNetworkError {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestGet_UnknownSession(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)

	_, err := env.sessions.Get("no-such-session")
	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeUnknownSession {
		t.Fatalf("expected unknown-session error, got %v", err)
	}
}

func TestDelete_RemovesSession(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)

	resp, err := env.sessions.CreateSession(context.Background(), dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	env.sessions.Delete(resp.SessionID)

	if _, err := env.sessions.Get(resp.SessionID); err == nil {
		t.Fatal("expected deleted session to be gone")
	}
	// Deleting again is a no-op.
	env.sessions.Delete(resp.SessionID)
}

func TestProfile_SaveApplyRoundTrip(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)
	ctx := context.Background()
	disabled := false

	created, err := env.sessions.CreateSession(ctx, dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
		AutoMap:   &disabled,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Map the title by hand, with a pipeline attached.
	err = env.sessions.WithSession(created.SessionID, func(session *Session) error {
		mapping, mapErr := env.mapping.Map(session.Mapping, "title", dtos.PropertyRef{
			ID:       "P1476",
			Label:    "title",
			Datatype: "monolingualtext",
		}, "", false)
		if mapErr != nil {
			return mapErr
		}
		return env.mapping.ReplaceBlocks(session.Mapping, mapping.MappingID, []dtos.TransformationBlock{
			{Type: dtos.BlockLanguageTag, Config: map[string]interface{}{"language": "en"}},
		})
	})
	if err != nil {
		t.Fatalf("mapping failed: %v", err)
	}

	saved, err := env.sessions.SaveProfile(ctx, created.SessionID, "Photograph collections")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.KeyCount != 1 {
		t.Errorf("expected 1 profile entry, got %d", saved.KeyCount)
	}

	profiles, err := env.sessions.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "Photograph collections" {
		t.Fatalf("unexpected profiles %+v", profiles)
	}
	if profiles[0].CreatedAt == "" {
		t.Error("expected formatted creation time")
	}

	// A second session over the same record shape picks the profile up.
	second, err := env.sessions.CreateSession(ctx, dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
		AutoMap:   &disabled,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	applied, err := env.sessions.ApplyProfile(ctx, second.SessionID, profiles[0].ID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied assignment, got %d", applied)
	}

	err = env.sessions.WithSession(second.SessionID, func(session *Session) error {
		mappingID, ok := session.Mapping.KeyMappings["title"]
		if !ok {
			t.Fatal("expected title mapped after apply")
		}
		blocks := session.Mapping.Blocks[mappingID]
		if len(blocks) != 1 || blocks[0].Type != dtos.BlockLanguageTag {
			t.Errorf("pipeline did not travel with the profile: %+v", blocks)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfile_SkipsKeysAbsentFromSession(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)
	ctx := context.Background()
	disabled := false

	created, err := env.sessions.CreateSession(ctx, dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
		AutoMap:   &disabled,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = env.sessions.WithSession(created.SessionID, func(session *Session) error {
		for _, key := range []string{"title", "identifier"} {
			if _, mapErr := env.mapping.Map(session.Mapping, key, dtos.PropertyRef{
				ID: "P1476", Label: "title", Datatype: "monolingualtext",
			}, "", false); mapErr != nil {
				return mapErr
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("mapping failed: %v", err)
	}

	if _, err := env.sessions.SaveProfile(ctx, created.SessionID, "Two keys"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	profiles, err := env.sessions.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	// The target session only carries one of the profile's keys.
	narrow := newTestSessionService(t, []dtos.SourceRecord{
		{"@id": "https://collections.example.org/items/9", "title": "Lone record"},
	}, nil)
	// Reuse the stored profile through the same repository.
	narrow.sessions.profiles = env.sessions.profiles

	target, err := narrow.sessions.CreateSession(ctx, dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
		AutoMap:   &disabled,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	applied, err := narrow.sessions.ApplyProfile(ctx, target.SessionID, profiles[0].ID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected only the present key applied, got %d", applied)
	}
}

func TestProfile_SaveSameNameReplaces(t *testing.T) {
	env := newTestSessionService(t, sessionRecords(), nil)
	ctx := context.Background()

	created, err := env.sessions.CreateSession(ctx, dtos.CreateSessionReq{
		SourceURL: "https://collections.example.org/api/items",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := env.sessions.SaveProfile(ctx, created.SessionID, "Nightly"); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if _, err := env.sessions.SaveProfile(ctx, created.SessionID, "Nightly"); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	profiles, err := env.sessions.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("expected the profile replaced, got %d profiles", len(profiles))
	}
}
