package routes

import (
	"heritage-experiment/concordance/internal/api"
	"heritage-experiment/concordance/internal/metrics"
	"heritage-experiment/concordance/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies, handlers *api.Handlers) {

	// Share links carry their own signed token instead of an API key.
	r.Group(func(public chi.Router) {
		public.Use(middleware.MetricsMiddleware(metricsReg))
		public.Get("/shared", handlers.OpenSharedSession())
	})

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys))

		// Target-KB lookups, session independent
		v1.Get("/languages", handlers.SearchLanguages())
		v1.Get("/properties/{propertyID}", handlers.GetPropertyConstraints())

		// Saved mapping profiles
		v1.Get("/profiles", handlers.ListProfiles())

		v1.Post("/sessions", handlers.CreateSession())
		v1.Route("/sessions/{sessionID}", func(session chi.Router) {
			session.Get("/", handlers.GetSession())
			session.Delete("/", handlers.DeleteSession())
			session.Post("/share", handlers.ShareSession())

			session.Get("/keys", handlers.GetKeys())
			session.Post("/keys/categorize", handlers.CategorizeKey())
			session.Post("/keys/map", handlers.MapKey())
			session.Post("/properties/manual", handlers.AddManualProperty())

			session.Get("/mappings/{mappingID}/blocks", handlers.GetBlocks())
			session.Put("/mappings/{mappingID}/blocks", handlers.ReplaceBlocks())
			session.Post("/mappings/{mappingID}/blocks/preview", handlers.PreviewTransform())

			session.Post("/reconcile/open", handlers.OpenReconciliation())
			session.Post("/reconcile/confirm", handlers.ConfirmReconciliation())
			session.Post("/reconcile/skip", handlers.SkipReconciliation())
			session.Post("/reconcile/reopen", handlers.ReopenReconciliation())
			session.Post("/reconcile/reset", handlers.ResetReconciliation())
			session.Post("/reconcile/search", handlers.SearchEntities())

			session.Get("/references", handlers.GetReferences())
			session.Post("/references/detect", handlers.RedetectReferences())
			session.Post("/references/custom", handlers.CreateCustomReference())
			session.Post("/references/convert", handlers.ConvertReference())
			session.Put("/references/assign/{propertyID}", handlers.AssignReferences())

			session.Post("/profiles", handlers.SaveProfile())
			session.Post("/profiles/apply", handlers.ApplyProfile())
		})
	})
}
