package controllers

import (
	"log/slog"
	"net/http"
	"regexp"

	"teamregistry/internal/delivery/http/helpers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/domain"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{Logger: logger, Service: svc}
}

// EventStats godoc
// @Summary Get aggregated statistics for an event
// @Description Only the event owner may view stats. Includes per-team rows and, for completed events, the wrap-up extras.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" format(uuid)
// @Success 200 {object} helpers.APIResponse{data=domain.EventStats}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/stats [get]
func (c *StatsController) EventStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !uuidRegex.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stats, err := c.Service.EventStats(r.Context(), id, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
