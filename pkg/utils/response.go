// Package utils provides common utility functions for HTTP response handling,
// request ID management, and cookie operations. It includes standardized response
// formats with automatic request ID injection for request correlation.
package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// requestIDKey is the context key for request ID
const requestIDKey contextKey = "request_id"

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if the context is nil or no request ID is present.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds a request ID to the context for request correlation.
// Typically called by the logging middleware.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ErrorResponse represents a standard error response structure.
// It includes the HTTP status text, a custom message, and a request ID for tracing.
//
// Upstream causes are never included here; they are logged server-side only.
type ErrorResponse struct {
	Error     string `json:"error"`                // HTTP status text (e.g., "Unauthorized")
	Message   string `json:"message,omitempty"`    // Client-facing error message
	RequestID string `json:"request_id,omitempty"` // Request ID for tracing
}

// RespondWithError sends a JSON error response with automatic request ID
// extraction from the request context.
//
// Example:
//
//	if !h.sessions.VerifySubject(r, userID) {
//	    utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
//	    return
//	}
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	requestID := GetRequestID(r.Context())
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID).
			Msg("Failed to encode error response")
	}
}

// RespondWithJSON sends a JSON response with the given status code and data.
//
// Example:
//
//	utils.RespondWithJSON(w, r, http.StatusOK, profile)
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().
			Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Msg("Failed to encode JSON response")
	}
}

// RespondWithMessage sends a simple {"message": ...} response with the
// given status code. Used for acknowledgment-only endpoints.
//
// Example:
//
//	utils.RespondWithMessage(w, r, http.StatusOK, "Name updated successfully.")
func RespondWithMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	RespondWithJSON(w, r, statusCode, map[string]string{"message": message})
}

// SetAuthCookie sets an authentication cookie with appropriate security settings.
// In production, the cookie is marked as Secure (HTTPS only). The cookie is always
// HttpOnly and uses SameSite=Lax for CSRF protection.
func SetAuthCookie(w http.ResponseWriter, name, value string, expires time.Time, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// SetAuthCookieWithMaxAge sets an authentication cookie with MaxAge instead of
// Expires. MaxAge is in seconds. Used for short-lived cookies like OAuth state.
func SetAuthCookieWithMaxAge(w http.ResponseWriter, name, value string, maxAge int, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearAuthCookie clears a cookie by setting MaxAge to -1, instructing
// the browser to delete it immediately.
func ClearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
