package handlers

import (
	"context"
	"net/http"

	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
)

// RowSource produces dashboard rows. Satisfied by services.DashboardService.
type RowSource interface {
	Rows(ctx context.Context) ([]models.DashboardRow, error)
}

// SnapshotSource produces a statistics snapshot. Satisfied by
// services.StatisticsService.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*models.Statistic, error)
}

// OverviewSource produces the combined overview. Satisfied by
// services.OverviewService.
type OverviewSource interface {
	Fetch(ctx context.Context) (*models.Overview, error)
}

// DashboardHandler handles the aggregation endpoints. Routes using it
// are gated by middleware.RequireSession — any valid session suffices,
// these are operational views rather than per-user data.
type DashboardHandler struct {
	dashboard  RowSource
	statistics SnapshotSource
	overview   OverviewSource
}

// NewDashboardHandler creates a dashboard handler over the aggregation
// services.
//
// Example:
//
//	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc, statsSvc, overviewSvc)
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    r.Get("/api/user/dashboard", dashboardHandler.Dashboard)
//	    r.Get("/api/user/statistic", dashboardHandler.Statistic)
//	    r.Get("/api/user/overview", dashboardHandler.Overview)
//	})
func NewDashboardHandler(dashboard RowSource, statistics SnapshotSource, overview OverviewSource) *DashboardHandler {
	return &DashboardHandler{
		dashboard:  dashboard,
		statistics: statistics,
		overview:   overview,
	}
}

// Dashboard returns one display row per upstream user, in upstream
// order. On upstream failure the client gets a generic 500 and the
// cause is logged server-side.
//
// @Summary      Get dashboard rows
// @Tags         dashboard
// @Produce      json
// @Success      200  {array}   models.DashboardRow
// @Failure      401  {object}  utils.ErrorResponse  "No valid session"
// @Failure      500  {object}  utils.ErrorResponse  "Upstream failure"
// @Router       /api/user/dashboard [get]
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboard.Rows(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build dashboard rows")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, rows)
}

// Statistic returns the statistics snapshot: total users, today's
// active sessions, and the 7-day trailing average.
//
// @Summary      Get statistics snapshot
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  models.Statistic
// @Failure      401  {object}  utils.ErrorResponse  "No valid session"
// @Failure      500  {object}  utils.ErrorResponse  "Upstream failure"
// @Router       /api/user/statistic [get]
func (h *DashboardHandler) Statistic(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.statistics.Snapshot(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute statistics snapshot")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// Overview returns the combined dashboard-plus-statistics fetch. The two
// aggregations run concurrently and the response is all-or-nothing: if
// either fails, the whole request fails with a generic 500.
//
// @Summary      Get combined dashboard and statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  models.Overview
// @Failure      401  {object}  utils.ErrorResponse  "No valid session"
// @Failure      500  {object}  utils.ErrorResponse  "Either fetch failed"
// @Router       /api/user/overview [get]
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.overview.Fetch(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build overview")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, overview)
}
