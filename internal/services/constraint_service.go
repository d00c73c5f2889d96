package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/providers"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// constraintTTL bounds how long fetched property constraints are reused.
const constraintTTL = 30 * time.Minute

// ConstraintService fetches target-property definitions with their constraint
// declarations. Successful fetches are cached per property id; failed or
// partial fetches are never cached, so a retry starts clean instead of
// merging with stale data. Concurrent fetches for the same property collapse
// into one call.
type ConstraintService struct {
	kb      providers.KnowledgeBaseProvider
	cache   common.CacheInterface
	group   singleflight.Group
	metrics *metrics.MetricsRegistry
}

// NewConstraintService creates a new constraint fetch service
func NewConstraintService(kb providers.KnowledgeBaseProvider, cache common.CacheInterface, reg *metrics.MetricsRegistry) *ConstraintService {
	return &ConstraintService{
		kb:      kb,
		cache:   cache,
		metrics: reg,
	}
}

func constraintCacheKey(propertyID string) string {
	return string(constants.CachePrefixConstraints) + propertyID
}

// Get returns the property definition for one property id, from cache when
// available.
func (s *ConstraintService) Get(ctx context.Context, propertyID string) (*dtos.PropertyRef, error) {
	cacheKey := constraintCacheKey(propertyID)

	if val, found := s.cache.Get(cacheKey); found {
		if prop, ok := val.(*dtos.PropertyRef); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixConstraints)).Inc()
			}
			return prop, nil
		}
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixConstraints)).Inc()
	}

	val, err, _ := s.group.Do(propertyID, func() (interface{}, error) {
		start := time.Now()
		prop, _, err := s.kb.GetPropertyConstraints(ctx, propertyID)
		if s.metrics != nil {
			s.metrics.KBLookupDuration.WithLabelValues("property_constraints").Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.KBLookupsTotal.WithLabelValues("property_constraints", "error").Inc()
			}
			return nil, fmt.Errorf("constraint fetch for %s failed: %w", propertyID, err)
		}
		if s.metrics != nil {
			s.metrics.KBLookupsTotal.WithLabelValues("property_constraints", "success").Inc()
		}

		// Cache only complete, successful results.
		s.cache.Set(constraintCacheKey(propertyID), prop, constraintTTL)
		return prop, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*dtos.PropertyRef), nil
}

// FetchBatch fetches constraints for several properties concurrently. One
// failed fetch never blocks or corrupts the others; the caller receives every
// successful property plus a failure list.
func (s *ConstraintService) FetchBatch(ctx context.Context, propertyIDs []string) (map[string]*dtos.PropertyRef, []dtos.AutoMapFailure) {
	results := make(map[string]*dtos.PropertyRef, len(propertyIDs))
	var failures []dtos.AutoMapFailure
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, pid := range propertyIDs {
		pid := pid
		g.Go(func() error {
			prop, err := s.Get(gctx, pid)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, dtos.AutoMapFailure{
					PropertyID: pid,
					Error:      err.Error(),
				})
				// Partial success is expected; never cancel siblings.
				return nil
			}
			results[pid] = prop
			return nil
		})
	}

	// Errors are collected per property, so Wait cannot fail.
	_ = g.Wait()

	// Deterministic failure ordering for callers and tests.
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].PropertyID < failures[j].PropertyID
	})

	if len(failures) > 0 {
		logging.Warn("Constraint batch finished with failures",
			"requested", len(propertyIDs),
			"failed", len(failures),
		)
	}

	return results, failures
}
