// Package handler provides HTTP handlers for the mission planner API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/api/response"
	"github.com/yimbot/missionplanner/internal/resilience"
)

// readyTimeout bounds the store ping behind the readiness probe.
const readyTimeout = 2 * time.Second

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	storeName string
	store     Pinger
	registry  *resilience.Registry
}

// OpsConfig holds the dependencies reported by the ops endpoints. Store and
// Registry may be nil.
type OpsConfig struct {
	Version   string
	BuildTime string
	StoreName string
	Store     Pinger
	Registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		storeName: cfg.StoreName,
		store:     cfg.Store,
		registry:  cfg.Registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready - fails with 503 while the path
// store cannot be reached.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	if err := h.pingStore(r.Context()); err != nil {
		health.Status = models.HealthStatusFail
		health.Details = map[string]any{h.storeLabel(): err.Error()}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	store := models.SubsystemStatus{Name: h.storeLabel(), Status: models.HealthStatusOK}
	if err := h.pingStore(r.Context()); err != nil {
		detail := err.Error()
		store.Status = models.HealthStatusFail
		store.Detail = &detail
	}

	status := models.SystemStatus{
		Status:     store.Status,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{store},
		Providers:  []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, health := range h.registry.All() {
			provider := toProviderStatus(health)
			status.Providers = append(status.Providers, provider)
			status.Status = worst(status.Status, provider.Status)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) pingStore(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}

func (h *OpsHandler) storeLabel() string {
	if h.storeName == "" {
		return "path-store"
	}
	return "path-store:" + h.storeName
}

func toProviderStatus(health resilience.Health) models.ProviderStatus {
	p := models.ProviderStatus{
		Provider:     health.Name,
		Status:       models.HealthStatus(health.Status()),
		CircuitState: health.State.String(),
	}
	if health.LastSuccessAt != nil {
		ts := models.Timestamp(*health.LastSuccessAt)
		p.LastSuccessAt = &ts
	}
	if health.LastFailureAt != nil {
		ts := models.Timestamp(*health.LastFailureAt)
		p.LastFailureAt = &ts
	}
	if health.LastError != "" {
		msg := health.LastError
		p.Message = &msg
	}
	return p
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	rank := map[models.HealthStatus]int{
		models.HealthStatusOK:       0,
		models.HealthStatusDegraded: 1,
		models.HealthStatusFail:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
