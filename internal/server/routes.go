package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autoreply/internal/handlers"
	"autoreply/internal/validation"
)

// Deps are the collaborators the routes are served from.
type Deps struct {
	Processor handlers.EventProcessor
	Outcomes  handlers.OutcomeReader
	Database  handlers.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	webhookHandler := handlers.NewWebhookHandler(deps.Processor, validation.New(), s.Log)
	outcomeHandler := handlers.NewOutcomeHandler(deps.Outcomes, s.Log)
	probeHandler := handlers.NewProbeHandler(deps.Database)

	// Probes
	s.App.Get("/health", probeHandler.Liveness)
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	// Metrics
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Review platform webhooks
	s.App.Post("/webhook/reviews", webhookHandler.Receive)
	s.App.Post("/webhook/trustpilot", webhookHandler.Receive)

	// Audit
	s.App.Get("/api/outcomes/:review_id", outcomeHandler.Get)
}
