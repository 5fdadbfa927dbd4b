// Package api wires the chi router: public routes (/health, /auth/token)
// and JWT-protected AI routes under /api/v1.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/econpulse/econpulse/internal/api/handlers"
	apmiddleware "github.com/econpulse/econpulse/internal/api/middleware"
	domainaudit "github.com/econpulse/econpulse/internal/domain/audit"
	domainauth "github.com/econpulse/econpulse/internal/domain/auth"
	"github.com/econpulse/econpulse/internal/infra/ai"
	"github.com/econpulse/econpulse/internal/infra/eventbus"
)

// NewRouter creates and configures the chi router with all routes. The AI
// service is built by the caller so the same wiring can back the MCP server.
func NewRouter(db *sql.DB, aiSvc *ai.Service, bus eventbus.EventBus) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Credential exchange — public, no JWT required
	authHandler := handlers.NewAuthHandler(domainauth.NewService(db))
	r.Post("/auth/token", authHandler.Token)

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	auditSvc := domainaudit.NewService(db)
	domainaudit.NewRecorder(auditSvc, bus).Start(context.Background())

	aiHandler := handlers.NewAIHandler(aiSvc)
	providersHandler := handlers.NewProvidersHandler(aiSvc.Registry())
	auditHandler := handlers.NewAuditHandler(auditSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate", aiHandler.Generate) // POST /api/v1/ai/generate
			r.Post("/embed", aiHandler.Embed)       // POST /api/v1/ai/embed
			r.Post("/rerank", aiHandler.Rerank)     // POST /api/v1/ai/rerank
		})

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", providersHandler.List)                          // GET /api/v1/providers
			r.Post("/activate", providersHandler.Activate)             // POST /api/v1/providers/activate
			r.Get("/{id}/availability", providersHandler.Availability) // GET /api/v1/providers/{id}/availability
		})

		r.Get("/audit/calls", auditHandler.ListCalls) // GET /api/v1/audit/calls
	})

	return r
}
