// Package api wires the HTTP API of the mission planner.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/api/handler"
	"github.com/yimbot/missionplanner/internal/api/middleware"
	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Planner     *mission.Planner
	Paths       *pathstore.Service
	StoreName   string
	Registry    *resilience.Registry
	CORSOrigins []string
	RequireTLS  bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "missionplanner-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(problemHandler(func(traceID string) *models.Problem {
		return models.NewNotFound(traceID, "no such endpoint")
	}))
	r.MethodNotAllowed(problemHandler(func(traceID string) *models.Problem {
		return models.NewProblem("about:blank", "Method not allowed", http.StatusMethodNotAllowed, traceID)
	}))

	ops := handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		StoreName: cfg.StoreName,
		Registry:  cfg.Registry,
	}
	if cfg.Paths != nil {
		ops.Store = cfg.Paths
	}
	opsHandler := handler.NewOpsHandler(ops)
	pathHandler := handler.NewPathHandler(cfg.Planner, cfg.Paths, cfg.Logger)
	statsHandler := handler.NewStatsHandler(cfg.Paths, cfg.Logger)

	planRateLimit := middleware.RateLimitByIP(middleware.PlanRateLimit)         // 60 req/min
	writeRateLimit := middleware.RateLimitByIP(middleware.WriteRateLimit)       // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Planning endpoints share the compute budget.
		r.Group(func(r chi.Router) {
			r.Use(planRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/paths:generate", pathHandler.Generate)
			r.Post("/paths:import", pathHandler.Import)
			r.Post("/paths/{pathId}:regenerate", pathHandler.Regenerate)
		})

		r.With(writeRateLimit, middleware.RequireJSON).Post("/paths", pathHandler.Save)

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/paths", pathHandler.List)
			r.Get("/paths/{pathId}", pathHandler.Get)
			r.Get("/paths/{pathId}/export", pathHandler.Export)
			r.Get("/stats/overview", statsHandler.Overview)
		})
	})

	return r
}

func problemHandler(build func(traceID string) *models.Problem) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		build(middleware.GetRequestID(r.Context())).WithInstance(r.URL.Path).Write(w)
	}
}
