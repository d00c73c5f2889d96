package services

import (
	"context"
	"regexp"
	"strings"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/models/dtos"
)

// AnalyzerService scans a fetched record set and produces per-key statistics:
// frequency, a representative sample value and a coarse value type. Keys whose
// name matches the ignore-prefix list land directly in the ignored category.
type AnalyzerService struct {
	ignoreCfg *common.IgnoreConfigService
}

// NewAnalyzerService creates a new key analyzer
func NewAnalyzerService(ignoreCfg *common.IgnoreConfigService) *AnalyzerService {
	return &AnalyzerService{ignoreCfg: ignoreCfg}
}

var (
	dateValuePattern = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?([T ]\d{2}:\d{2}(:\d{2})?.*)?$`)
	urlValuePattern  = regexp.MustCompile(`^https?://\S+$`)
)

// keyStats accumulates per-key observations during a single analysis pass.
type keyStats struct {
	frequency int
	sample    interface{}
	typeVotes map[dtos.ValueType]int
}

// Analyze computes MappingKeys for every key encountered across all records.
// Inconsistent value types across records never fail the run: the most
// frequent type wins and the key is flagged ambiguous for downstream
// transformation validation.
func (s *AnalyzerService) Analyze(ctx context.Context, records []dtos.SourceRecord) []dtos.MappingKey {
	// The ignore list is resolved fresh on every run, never cached.
	ignorePatterns := s.ignoreCfg.Patterns(ctx)

	stats := make(map[string]*keyStats)
	var order []string

	for _, record := range records {
		for key, value := range record {
			st, seen := stats[key]
			if !seen {
				st = &keyStats{typeVotes: make(map[dtos.ValueType]int)}
				stats[key] = st
				order = append(order, key)
			}

			st.frequency++
			if st.sample == nil && value != nil {
				st.sample = value
			}
			st.typeVotes[inferValueType(value)]++
		}
	}

	keys := make([]dtos.MappingKey, 0, len(order))
	for _, key := range order {
		st := stats[key]
		valueType, ambiguous := dominantType(st.typeVotes)

		category := dtos.CategoryNonLinked
		if matchesIgnorePattern(key, ignorePatterns) {
			category = dtos.CategoryIgnored
		}

		keys = append(keys, dtos.MappingKey{
			Key:         key,
			SampleValue: st.sample,
			Frequency:   st.frequency,
			TotalItems:  len(records),
			Category:    category,
			Type:        valueType,
			Ambiguous:   ambiguous,
		})
	}

	logging.Info("Key analysis completed",
		"records", len(records),
		"keys", len(keys),
	)

	return keys
}

// inferValueType assigns a coarse type to a single value.
func inferValueType(value interface{}) dtos.ValueType {
	switch v := value.(type) {
	case nil:
		return dtos.ValueTypeNull
	case float64, int, int64:
		return dtos.ValueTypeNumber
	case map[string]interface{}, []interface{}:
		return dtos.ValueTypeNested
	case string:
		trimmed := strings.TrimSpace(v)
		switch {
		case urlValuePattern.MatchString(trimmed):
			return dtos.ValueTypeLink
		case dateValuePattern.MatchString(trimmed):
			return dtos.ValueTypeDate
		default:
			return dtos.ValueTypeString
		}
	default:
		return dtos.ValueTypeString
	}
}

// dominantType picks the most frequent non-null type and reports whether more
// than one non-null type was observed.
func dominantType(votes map[dtos.ValueType]int) (dtos.ValueType, bool) {
	best := dtos.ValueTypeNull
	bestCount := 0
	distinct := 0

	// Deterministic tie-breaking: iterate a fixed type order.
	for _, t := range []dtos.ValueType{
		dtos.ValueTypeString,
		dtos.ValueTypeNumber,
		dtos.ValueTypeDate,
		dtos.ValueTypeLink,
		dtos.ValueTypeNested,
	} {
		count := votes[t]
		if count > 0 {
			distinct++
		}
		if count > bestCount {
			best = t
			bestCount = count
		}
	}

	if bestCount == 0 {
		return dtos.ValueTypeNull, false
	}
	return best, distinct > 1
}

// matchesIgnorePattern reports whether the key starts with any ignore prefix.
func matchesIgnorePattern(key string, patterns []string) bool {
	for _, prefix := range patterns {
		if prefix != "" && strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
