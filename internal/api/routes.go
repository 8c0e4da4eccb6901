package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the admin SPA sends credentialed requests from its own origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/events", h.PostEvent)
		r.Post("/mail/test", h.TestSend)

		r.Route("/automation", func(r chi.Router) {
			r.Get("/jobs", h.ListJobs)
			r.Post("/jobs/{jobID}/retry", h.RetryJob)
			r.Get("/stats", h.GetStats)

			r.Get("/rules", h.ListRules)
			r.Post("/rules", h.CreateRule)
			r.Put("/rules/{ruleID}", h.UpdateRule)
			r.Delete("/rules/{ruleID}", h.DeleteRule)

			r.Get("/templates", h.ListTemplates)
			r.Post("/templates", h.CreateTemplate)
			r.Get("/templates/{templateID}", h.GetTemplate)
			r.Put("/templates/{templateID}", h.UpdateTemplate)
			r.Delete("/templates/{templateID}", h.DeleteTemplate)
		})

		r.Route("/senders", func(r chi.Router) {
			r.Get("/", h.ListSenders)
			r.Post("/", h.CreateSender)
			r.Delete("/{senderID}", h.DeleteSender)
			r.Post("/{senderID}/default", h.SetDefaultSender)
		})
	})

	return r
}
