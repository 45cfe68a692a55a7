// Package middleware provides HTTP middleware components for the API.
// Middleware functions wrap HTTP handlers to provide cross-cutting concerns
// like session authentication, logging, metrics, and rate limiting.
//
// All middleware is designed to be composable with the chi router.
package middleware

import (
	"context"
	"net/http"

	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SubjectKey is the context key for the authenticated session's subject.
	// Set by RequireSession after a valid session is found.
	SubjectKey contextKey = "subject"

	// EmailKey is the context key for the authenticated session's email.
	EmailKey contextKey = "email"
)

// SessionProvider is the capability the middleware needs from the session
// layer: read the current session from a request, or report that none
// exists. Satisfied by services.SessionService.
type SessionProvider interface {
	CurrentSession(r *http.Request) (*models.Session, bool)
}

// RequireSession creates middleware that gates a route on the existence of
// any valid session. This is the looser of the two authorization checks:
// the aggregation endpoints are operational views open to every signed-in
// user, so no subject match is performed here.
//
// On success the session's subject and email are added to the request
// context. On failure the request is rejected with a fixed 401 body and
// no detail is logged beyond the path.
//
// Usage:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    r.Get("/api/user/dashboard", dashboardHandler.Dashboard)
//	    r.Get("/api/user/statistic", dashboardHandler.Statistic)
//	})
func RequireSession(provider SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := provider.CurrentSession(r)
			if !ok {
				log.Warn().Str("path", r.URL.Path).Msg("Request without valid session")
				utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, session.Subject)
			ctx = context.WithValue(ctx, EmailKey, session.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject extracts the authenticated subject from the request context.
// Returns the subject and a boolean indicating whether it was found.
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// GetEmail extracts the authenticated email from the request context.
func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
