package api

import (
	"os"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/db"
	"heritage-experiment/concordance/internal/db/repositories"
	"heritage-experiment/concordance/internal/logging"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/providers"
	"heritage-experiment/concordance/internal/services"
)

type Repositories struct {
	Keys     *repositories.KeysRepo
	Profiles *repositories.ProfileRepository
}

type Services struct {
	Cache       common.CacheInterface
	Analyzer    *services.AnalyzerService
	Classifier  *services.ClassifierService
	Mapping     *services.MappingService
	Transform   *services.TransformService
	Constraints *services.ConstraintService
	Recon       *services.ReconciliationService
	Search      *services.SearchCoordinator
	Refs        *services.ReferenceService
	Sessions    *services.SessionService
	URLSigner   *common.URLSignerService
	KB          providers.KnowledgeBaseProvider
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires the repositories, providers and services. Redis is
// optional: without it the constraint cache runs in-memory and share links are
// disabled.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Keys:     repositories.NewApiKeysRepo(db.DB),
		Profiles: repositories.NewProfileRepository(db.PgDB),
	}

	var cacheSvc common.CacheInterface
	var urlSigner *common.URLSignerService

	if os.Getenv("CACHE_BACKEND") == "redis" {
		redisCache, err := common.NewRedisCacheService()
		if err != nil {
			return nil, err
		}
		cacheSvc = redisCache

		secret := os.Getenv("SHARE_LINK_SECRET")
		if secret != "" {
			urlSigner = common.NewURLSignerService([]byte(secret), redisCache.Client())
		}
	} else {
		cacheSvc = common.NewCacheService(1800, 600)
	}

	kbProvider := providers.NewWikibaseProvider()
	sourceProvider := providers.NewCollectionsProvider()
	ignoreCfg := common.NewIgnoreConfigService(sourceProvider)

	analyzerSvc := services.NewAnalyzerService(ignoreCfg)
	classifierSvc := services.NewClassifierService()
	constraintSvc := services.NewConstraintService(kbProvider, cacheSvc, metricsReg)
	mappingSvc := services.NewMappingService(constraintSvc)
	transformSvc := services.NewTransformService()
	reconSvc := services.NewReconciliationService(classifierSvc, metricsReg)
	searchSvc := services.NewSearchCoordinator(kbProvider, metricsReg)
	refSvc := services.NewReferenceService(classifierSvc)
	sessionSvc := services.NewSessionService(
		sourceProvider, analyzerSvc, classifierSvc, mappingSvc, refSvc, repos.Profiles, metricsReg,
	)

	logging.Info("Dependencies initialized",
		"kb_provider", kbProvider.GetProviderType(),
		"source_provider", sourceProvider.GetProviderType(),
		"share_links", urlSigner != nil,
	)

	return &Dependencies{
		Repo: repos,
		Services: &Services{
			Cache:       cacheSvc,
			Analyzer:    analyzerSvc,
			Classifier:  classifierSvc,
			Mapping:     mappingSvc,
			Transform:   transformSvc,
			Constraints: constraintSvc,
			Recon:       reconSvc,
			Search:      searchSvc,
			Refs:        refSvc,
			Sessions:    sessionSvc,
			URLSigner:   urlSigner,
			KB:          kbProvider,
		},
	}, nil
}
