package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/db/repositories"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/models/dtos"
	gormModels "heritage-experiment/concordance/internal/models/gorm"
	"heritage-experiment/concordance/internal/providers"
)

// Session is one in-memory working session over a fetched record set. All
// mutations of its aggregates happen under mu; the session service hands the
// lock to callers via WithSession.
type Session struct {
	ID        string
	SourceURL string
	CreatedAt time.Time

	mu      sync.Mutex
	Records []dtos.SourceRecord
	Mapping *MappingState
	Recon   *ReconState
	Refs    *ReferenceState
}

// SessionService owns the session registry and orchestrates the analysis,
// classification and auto-mapping steps that run on session creation.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	source     providers.SourceProvider
	analyzer   *AnalyzerService
	classifier *ClassifierService
	mapping    *MappingService
	refs       *ReferenceService
	profiles   *repositories.ProfileRepository
	metrics    *metrics.MetricsRegistry
}

// NewSessionService creates a new session registry service
func NewSessionService(
	source providers.SourceProvider,
	analyzer *AnalyzerService,
	classifier *ClassifierService,
	mapping *MappingService,
	refs *ReferenceService,
	profiles *repositories.ProfileRepository,
	reg *metrics.MetricsRegistry,
) *SessionService {
	return &SessionService{
		sessions:   make(map[string]*Session),
		source:     source,
		analyzer:   analyzer,
		classifier: classifier,
		mapping:    mapping,
		refs:       refs,
		profiles:   profiles,
		metrics:    reg,
	}
}

// CreateSession fetches the record set, analyzes its keys, detects references
// and optionally auto-maps recognized identifier fields. A failed auto-map
// never fails the session: the summary reports the failures and every
// successfully mapped field stays usable.
func (s *SessionService) CreateSession(ctx context.Context, req dtos.CreateSessionReq) (*dtos.CreateSessionResp, error) {
	records, _, err := s.source.FetchRecords(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.New().String(),
		SourceURL: req.SourceURL,
		CreatedAt: time.Now().UTC(),
		Records:   records,
		Mapping:   NewMappingState(),
		Recon:     NewReconState(),
		Refs:      NewReferenceState(),
	}

	keys := s.analyzer.Analyze(ctx, records)
	s.mapping.Seed(session.Mapping, keys)
	s.refs.Detect(session.Refs, records)

	summary := dtos.AutoMapSummary{}
	if req.AutoMap == nil || *req.AutoMap {
		classifications := make(map[string]dtos.Classification)
		for _, key := range keys {
			if key.Category == dtos.CategoryIgnored {
				continue
			}
			cls := s.classifier.Classify(key.Key, key.SampleValue)
			if cls.PropertyID != nil {
				classifications[key.Key] = cls
			}
		}
		summary = s.mapping.AutoMap(ctx, session.Mapping, classifications)

		if s.metrics != nil {
			outcome := "success"
			if len(summary.Failures) > 0 {
				outcome = "partial"
			}
			s.metrics.AutoMapBatchesTotal.WithLabelValues(outcome).Inc()
		}
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}

	logging.Info("Session created",
		"session_id", session.ID,
		"items", len(records),
		"keys", len(keys),
		"auto_mapped", summary.MappedCount,
	)

	return &dtos.CreateSessionResp{
		SessionID:      session.ID,
		ItemCount:      len(records),
		Keys:           s.mapping.KeysSnapshot(session.Mapping).Keys,
		AutoMapSummary: summary,
	}, nil
}

// Get returns a session by id.
func (s *SessionService) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, &providers.ProviderError{
			Code:    constants.ErrCodeUnknownSession,
			Message: constants.GetErrorMessage(constants.ErrCodeUnknownSession),
			Details: sessionID,
		}
	}
	return session, nil
}

// Delete discards a session.
func (s *SessionService) Delete(sessionID string) {
	s.mu.Lock()
	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if existed && s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
}

// WithSession runs fn under the session's lock. Every aggregate mutation goes
// through here so handlers cannot race each other on one session.
func (s *SessionService) WithSession(sessionID string, fn func(*Session) error) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return fn(session)
}

// SaveProfile persists the session's current mapping set under a name. The
// transformation pipelines travel with their mappings as JSON.
func (s *SessionService) SaveProfile(ctx context.Context, sessionID, name string) (*dtos.ProfileResp, error) {
	profile := &gormModels.MappingProfile{
		ID:   uuid.New().String(),
		Name: name,
	}

	err := s.WithSession(sessionID, func(session *Session) error {
		for _, key := range session.Mapping.KeyOrder {
			mappingID, ok := session.Mapping.KeyMappings[key]
			if !ok {
				continue
			}
			m := session.Mapping.Mappings[mappingID]

			blocksJSON := ""
			if blocks := session.Mapping.Blocks[mappingID]; len(blocks) > 0 {
				encoded, err := json.Marshal(blocks)
				if err != nil {
					return err
				}
				blocksJSON = string(encoded)
			}

			profile.Entries = append(profile.Entries, gormModels.MappingProfileEntry{
				ProfileID:  profile.ID,
				Key:        m.Key,
				PropertyID: m.Property.ID,
				Label:      m.Property.Label,
				Datatype:   m.Property.Datatype,
				SubField:   m.SubField,
				BlocksJSON: blocksJSON,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	logging.Info("Mapping profile saved", "profile", name, "entries", len(profile.Entries))

	return &dtos.ProfileResp{
		ID:       profile.ID,
		Name:     profile.Name,
		KeyCount: len(profile.Entries),
	}, nil
}

// ApplyProfile maps every profile entry whose key exists in the session. Keys
// absent from the session are skipped silently; the record set decides which
// assignments are applicable.
func (s *SessionService) ApplyProfile(ctx context.Context, sessionID, profileID string) (int, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return 0, err
	}

	applied := 0
	err = s.WithSession(sessionID, func(session *Session) error {
		for _, entry := range profile.Entries {
			if _, exists := session.Mapping.Keys[entry.Key]; !exists {
				continue
			}

			property := dtos.PropertyRef{
				ID:       entry.PropertyID,
				Label:    entry.Label,
				Datatype: entry.Datatype,
			}
			mapping, mapErr := s.mapping.Map(session.Mapping, entry.Key, property, entry.SubField, false)
			if mapErr != nil {
				return mapErr
			}

			if entry.BlocksJSON != "" {
				var blocks []dtos.TransformationBlock
				if jsonErr := json.Unmarshal([]byte(entry.BlocksJSON), &blocks); jsonErr != nil {
					return jsonErr
				}
				if blockErr := s.mapping.ReplaceBlocks(session.Mapping, mapping.MappingID, blocks); blockErr != nil {
					return blockErr
				}
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.Info("Mapping profile applied", "profile", profile.Name, "applied", applied)
	return applied, nil
}

// ListProfiles returns every saved profile, newest first.
func (s *SessionService) ListProfiles(ctx context.Context) ([]dtos.ProfileResp, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.ProfileResp, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, dtos.ProfileResp{
			ID:        p.ID,
			Name:      p.Name,
			KeyCount:  len(p.Entries),
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
