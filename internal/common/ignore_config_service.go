package common

import (
	stdCtx "context"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/providers"
)

// IgnoreConfigService resolves the ignore-key-pattern list. The list is
// re-fetched on every analysis run, never cached: edits to the external config
// must take effect on the next run.
type IgnoreConfigService struct {
	source providers.SourceProvider
}

func NewIgnoreConfigService(source providers.SourceProvider) *IgnoreConfigService {
	return &IgnoreConfigService{source: source}
}

// Patterns returns the current ignore-prefix list. Absence of external config
// or a fetch failure falls back to the built-in defaults rather than failing
// the run.
func (s *IgnoreConfigService) Patterns(ctx stdCtx.Context) []string {
	cfg, err := s.source.FetchIgnoreConfig(ctx)
	if err != nil {
		logging.Warn("Ignore config fetch failed, using defaults", "error", err.Error())
		return constants.DefaultIgnoredKeyPatterns
	}
	if cfg == nil || len(cfg.IgnoredKeyPatterns) == 0 {
		return constants.DefaultIgnoredKeyPatterns
	}
	return cfg.IgnoredKeyPatterns
}
