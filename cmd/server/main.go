package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ieraasyl/userboard/internal/handlers"
	"github.com/ieraasyl/userboard/internal/management"
	"github.com/ieraasyl/userboard/internal/middleware"
	"github.com/ieraasyl/userboard/internal/services"
	"github.com/ieraasyl/userboard/pkg/config"
	"github.com/ieraasyl/userboard/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title           User Dashboard API
// @version         1.0
// @description     Web dashboard over an external identity provider: hosted login,
// @description     per-user profile management, and aggregate signup/login statistics.
//
// @contact.name   API Support
// @contact.email  ieraasyl@example.com
//
// @license.name  MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name app_session
// @description Signed session token stored in HttpOnly cookie
func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("upstream", cfg.Upstream.BaseURL).
		Msg("Starting user dashboard")

	// Initialize upstream management client
	managementClient := management.NewClient(&cfg.Upstream)

	// Initialize services
	sessionService := services.NewSessionService(&cfg.Session)
	dashboardService := services.NewDashboardService(managementClient)
	statisticsService := services.NewStatisticsService(managementClient)
	overviewService := services.NewOverviewService(dashboardService, statisticsService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, sessionService)
	userHandler := handlers.NewUserHandler(managementClient, sessionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, statisticsService, overviewService)
	healthHandler := handlers.NewHealthHandler(managementClient)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", middleware.MetricsHandler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (rate limited)
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rateLimiter.Limit("auth"))
				r.Get("/login", authHandler.Login)
				r.Get("/callback", authHandler.Callback)
				r.Get("/logout", authHandler.Logout)
			})
			r.Get("/me", authHandler.Me)
		})

		r.Route("/user", func(r chi.Router) {
			// Aggregation endpoints: any valid session
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(sessionService))
				r.Get("/dashboard", dashboardHandler.Dashboard)
				r.Get("/statistic", dashboardHandler.Statistic)
				r.Get("/overview", dashboardHandler.Overview)
			})

			// Per-user endpoints: handler verifies the session subject
			// matches the path id
			r.Get("/{id}", userHandler.GetUser)
			r.Patch("/{id}", userHandler.UpdateName)
			r.Post("/{id}", userHandler.PerformAction)
		})
	})

	// Embedded dashboard UI
	r.Handle("/*", web.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully")
}
