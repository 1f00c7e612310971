package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the operator-surface router. There is no auth
// middleware here: this surface is meant to sit behind an operator VPN/
// internal network, not be internet-facing — user auth/role storage is
// explicitly out of scope.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health.HandleLiveness)
	r.Get("/readyz", h.Health.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Route("/networks", func(r chi.Router) {
			r.Post("/", h.CreateNetwork)
			r.Post("/detect-all", h.TriggerDetectionAll)
			r.Post("/{id}/detect", h.TriggerDetection)
			r.Post("/{id}/nodes", h.CreateStructureNode)
			r.Put("/{id}/nodes/{nodeId}", h.UpdateStructureNode)
			r.Delete("/{id}/nodes/{nodeId}", h.DeleteStructureNode)
			r.Post("/{id}/main-switch", h.SwitchMainNode)
			r.Post("/{id}/complaints", h.FileProjectComplaint)
		})
		r.Route("/optimizations", func(r chi.Router) {
			r.Post("/{id}/complaints", h.FileComplaint)
		})
		r.Route("/complaints", func(r chi.Router) {
			r.Post("/{id}/review", h.ReviewComplaint)
			r.Post("/{id}/resolve", h.ResolveComplaint)
		})
		r.Route("/templates", func(r chi.Router) {
			r.Post("/preview", h.PreviewTemplate)
		})
		r.Route("/digest", func(r chi.Router) {
			r.Get("/preview", h.PreviewDigest)
		})
		r.Post("/test-alert", h.SendTestAlert)
	})

	return r
}
