package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
)

// Pinger checks upstream connectivity. Satisfied by management.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	upstream Pinger
}

// NewHealthHandler creates a health handler with the given upstream
// dependency.
func NewHealthHandler(upstream Pinger) *HealthHandler {
	return &HealthHandler{upstream: upstream}
}

// HealthResponse is the body returned by the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// Health returns liveness status. It always succeeds while the process
// is running; it does not touch the upstream.
//
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns readiness status, verifying the upstream management API
// is reachable. Returns 503 with a degraded status if it is not.
//
// @Summary      Readiness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{"management_api": "ok"}
	status := "ok"
	code := http.StatusOK

	if err := h.upstream.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Readiness check failed")
		services["management_api"] = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, r, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}
