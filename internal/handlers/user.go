// Package handlers provides HTTP request handlers for the API endpoints.
// Handlers coordinate between the HTTP layer and the services/upstream
// layers, handling request parsing, validation, and response formatting.
//
// This package includes handlers for:
//   - Per-user profile read, name update, and actions
//   - Dashboard and statistics aggregation
//   - Hosted login/logout flow
//   - Health checks and readiness probes
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
)

// ManagementAPI defines the per-user upstream operations the handler
// needs. Satisfied by the management client; abstracted for testing.
type ManagementAPI interface {
	GetUser(ctx context.Context, userID string) (*models.Profile, error)
	UpdateName(ctx context.Context, userID, name string) error
	SendVerificationEmail(ctx context.Context, userID string) error
}

// SubjectVerifier is the strict session check for single-user routes:
// true only when a valid session exists and its subject matches the
// path's user id. Satisfied by services.SessionService.
type SubjectVerifier interface {
	VerifySubject(r *http.Request, targetUserID string) bool
}

// UserHandler handles the per-user profile endpoints. Every operation is
// gated on the session subject matching the path id; a failed check
// returns 401 before any upstream call is made.
type UserHandler struct {
	api      ManagementAPI   // Upstream management API access
	sessions SubjectVerifier // Session-to-subject gate
}

// NewUserHandler creates a user handler with its dependencies.
//
// Example:
//
//	userHandler := handlers.NewUserHandler(managementClient, sessions)
//	r.Get("/api/user/{id}", userHandler.GetUser)
//	r.Patch("/api/user/{id}", userHandler.UpdateName)
//	r.Post("/api/user/{id}", userHandler.PerformAction)
func NewUserHandler(api ManagementAPI, sessions SubjectVerifier) *UserHandler {
	return &UserHandler{
		api:      api,
		sessions: sessions,
	}
}

// updateNameRequest is the PATCH body.
type updateNameRequest struct {
	Name string `json:"name"`
}

// actionRequest is the POST body.
type actionRequest struct {
	Action string `json:"action"`
}

// GetUser retrieves the profile for the user in the path.
// Returns email, name, picture, and the email-verified flag. The
// upstream error cause is logged only; the client sees a generic 500.
//
// @Summary      Get user profile
// @Description  Returns the user's email, name, picture, and verification state.
// @Tags         user
// @Produce      json
// @Param        id   path      string  true  "User identifier (subject)"
// @Success      200  {object}  models.Profile
// @Failure      401  {object}  utils.ErrorResponse  "No session or subject mismatch"
// @Failure      500  {object}  utils.ErrorResponse  "Upstream failure"
// @Router       /api/user/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !h.sessions.VerifySubject(r, userID) {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.api.GetUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user profile")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithJSON(w, r, http.StatusOK, profile)
}

// UpdateName updates the user's display name. The name must be between
// 1 and 300 characters; anything else is rejected before the upstream
// call. A valid name is proxied unchanged.
//
// @Summary      Update display name
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User identifier (subject)"
// @Param        body  body      updateNameRequest  true  "New display name"
// @Success      200   {object}  map[string]string  "Name updated"
// @Failure      400   {object}  utils.ErrorResponse  "Invalid name length"
// @Failure      401   {object}  utils.ErrorResponse  "No session or subject mismatch"
// @Failure      500   {object}  utils.ErrorResponse  "Upstream failure"
// @Router       /api/user/{id} [patch]
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !h.sessions.VerifySubject(r, userID) {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := validation.Validate(req.Name,
		validation.Required,
		validation.RuneLength(1, 300),
	); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Name must be between 1 and 300 characters")
		return
	}

	if err := h.api.UpdateName(r.Context(), userID, req.Name); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update user name")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithMessage(w, r, http.StatusOK, "Name updated successfully.")
}

// PerformAction performs a named action for the user in the path.
// Only "resendVerificationEmail" is recognized; it triggers the
// upstream verification-email job. Unrecognized actions are rejected
// with 400 and no upstream call.
//
// @Summary      Perform a user action
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "User identifier (subject)"
// @Param        body  body      actionRequest  true  "Action to perform"
// @Success      200   {object}  map[string]string  "Action performed"
// @Failure      400   {object}  utils.ErrorResponse  "Unrecognized action"
// @Failure      401   {object}  utils.ErrorResponse  "No session or subject mismatch"
// @Failure      500   {object}  utils.ErrorResponse  "Upstream failure"
// @Router       /api/user/{id} [post]
func (h *UserHandler) PerformAction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !h.sessions.VerifySubject(r, userID) {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	if req.Action != "resendVerificationEmail" {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid action provided")
		return
	}

	if err := h.api.SendVerificationEmail(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to trigger verification email")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.RespondWithMessage(w, r, http.StatusOK, "Verification email sent successfully.")
}
