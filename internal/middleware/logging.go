package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
)

// CORS creates CORS middleware with the configured allowed origins.
// Credentials are enabled so the session cookie travels with
// cross-origin API calls from the frontend.
//
// Example:
//
//	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
}

// Logger creates structured logging middleware with request ID correlation.
//
// Request ID flow:
//  1. Check for an existing X-Request-ID header (from a load balancer/proxy)
//  2. Generate a new UUID if not present
//  3. Add it to the context for handlers and response bodies
//  4. Include it in response headers for client correlation
//
// Example logs:
//
//	{"level":"info","request_id":"abc-123","method":"GET","path":"/api/user/dashboard","msg":"Request started"}
//	{"level":"info","request_id":"abc-123","status":200,"bytes":156,"duration_ms":45,"msg":"Request completed"}
func Logger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := utils.WithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)

			// Wrap the response writer to capture status and size
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", requestID)

			log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", utils.ExtractClientIP(r)).
				Msg("Request started")

			next.ServeHTTP(ww, r)

			log.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// Recoverer recovers from panics in downstream handlers, logs the error
// with its request context, and returns a 500 without exposing the panic
// detail to the client. Register it first in the middleware chain.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("error", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")

					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds standard security headers to all responses.
// The CSP allows inline scripts for the embedded dashboard page and
// profile images from the identity provider's CDNs.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https://s.gravatar.com https://lh3.googleusercontent.com data:")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
