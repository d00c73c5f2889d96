package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/providers"
)

// Debounce windows for keystroke-driven entity search. Very short queries get
// a longer window because they fire on the first keystrokes and are nearly
// always superseded.
const (
	defaultSearchDebounce = 150 * time.Millisecond
	shortQueryDebounce    = 400 * time.Millisecond
	shortQueryLength      = 3
)

// SearchCoordinator serializes keystroke-driven entity searches per
// reconciliation record. Every Search call bumps the record's generation
// counter; a result is dropped as stale when the generation moved on while it
// was in flight, so out-of-order provider responses can never overwrite newer
// ones.
type SearchCoordinator struct {
	kb      providers.KnowledgeBaseProvider
	metrics *metrics.MetricsRegistry

	mu          sync.Mutex
	generations map[dtos.RecordKey]int64

	// Debounce windows, adjustable so tests run without real sleeps.
	debounce      time.Duration
	shortDebounce time.Duration
}

// NewSearchCoordinator creates a new per-record search coordinator
func NewSearchCoordinator(kb providers.KnowledgeBaseProvider, reg *metrics.MetricsRegistry) *SearchCoordinator {
	return &SearchCoordinator{
		kb:            kb,
		metrics:       reg,
		generations:   make(map[dtos.RecordKey]int64),
		debounce:      defaultSearchDebounce,
		shortDebounce: shortQueryDebounce,
	}
}

// SetDebounce overrides the debounce windows.
func (s *SearchCoordinator) SetDebounce(normal, short time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = normal
	s.shortDebounce = short
}

// bump advances the record's generation and returns the new value together
// with the applicable debounce window.
func (s *SearchCoordinator) bump(key dtos.RecordKey, query string) (int64, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[key]++
	wait := s.debounce
	if len(query) < shortQueryLength {
		wait = s.shortDebounce
	}
	return s.generations[key], wait
}

// current reads the record's generation without advancing it.
func (s *SearchCoordinator) current(key dtos.RecordKey) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

// Search runs one debounced entity search for a reconciliation record. The
// generation is checked both after the debounce window and after the provider
// call: either check failing means a newer query took over and this result is
// discarded with a stale error.
func (s *SearchCoordinator) Search(ctx context.Context, key dtos.RecordKey, query string) (*dtos.SearchResp, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &providers.ProviderError{
			Code:    constants.ErrCodeEmptyQuery,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyQuery),
		}
	}

	myGen, wait := s.bump(key, query)

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if s.current(key) != myGen {
		s.dropStale(key, query)
		return nil, staleError(query)
	}

	matches, _, err := s.kb.SearchEntities(ctx, query)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	// A newer query may have started while the provider call was in flight.
	if s.current(key) != myGen {
		s.dropStale(key, query)
		return nil, staleError(query)
	}

	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues("success").Inc()
	}

	return &dtos.SearchResp{
		Generation: myGen,
		Query:      query,
		Matches:    matches,
	}, nil
}

func (s *SearchCoordinator) dropStale(key dtos.RecordKey, query string) {
	if s.metrics != nil {
		s.metrics.StaleSearchDropsTotal.Inc()
	}
	logging.Debug("Dropped stale search result",
		"item", key.ItemID,
		"mapping", key.MappingID,
		"query", query,
	)
}

func staleError(query string) error {
	return &providers.ProviderError{
		Code:    constants.ErrCodeStaleQuery,
		Message: constants.GetErrorMessage(constants.ErrCodeStaleQuery),
		Details: query,
	}
}
