package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/api/middleware"
	"github.com/yimbot/missionplanner/internal/api/response"
	"github.com/yimbot/missionplanner/internal/pathstore"
)

// StatsHandler serves the dashboard overview.
type StatsHandler struct {
	paths  *pathstore.Service
	logger zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(paths *pathstore.Service, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{paths: paths, logger: logger}
}

// Overview handles GET /v1/stats/overview.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.paths.Overview(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("stats overview")
		response.ServiceUnavailable(w, r, "path store unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, toStatsOverview(overview))
}
