// Package config provides application configuration management with environment
// variable loading, validation, and sensible defaults. It supports .env files
// for local development and validates all required settings on startup to
// prevent runtime configuration errors.
//
// Configuration is loaded from environment variables with the Load() function,
// which returns a validated Config struct or an error if required variables
// are missing or invalid.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It aggregates all configuration sections into a single struct that is
// constructed once at process start and passed by reference into the
// components that need it. There is no ambient/global configuration.
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	OAuth     OAuthConfig
	Session   SessionConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-specific configuration including port,
// environment, and the externally visible application URL.
type ServerConfig struct {
	Port        string
	Environment string
	AppURL      string // Externally visible URL, used for post-login redirects
}

// UpstreamConfig holds the identity provider's management API settings:
// the issuer base URL and the static bearer credential used on every call.
type UpstreamConfig struct {
	BaseURL  string // Issuer base URL, e.g. https://tenant.eu.auth0.com
	APIToken string // Management API bearer token
}

// OAuthConfig holds the authorization-code flow credentials for the
// hosted login redirect.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // Callback URL registered with the identity provider
}

// SessionConfig holds the session cookie settings: the HMAC signing
// secret and the session lifetime.
type SessionConfig struct {
	Secret []byte
	Expiry time.Duration
}

// CORSConfig holds Cross-Origin Resource Sharing (CORS) configuration
// to control which origins can access the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds rate limiting configuration for the auth
// endpoints.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads and validates configuration from environment variables.
// It attempts to load a .env file if present (for local development) but
// doesn't fail if the file is missing (for production deployments).
//
// Required environment variables:
//   - AUTH0_ISSUER_BASE_URL: Identity provider base URL
//   - AUTH0_MANAGEMENT_API_TOKEN: Management API bearer token
//   - AUTH0_CLIENT_ID: OAuth client ID for the hosted login flow
//   - AUTH0_CLIENT_SECRET: OAuth client secret
//   - SESSION_SECRET: Secret for session cookie signing (>=32 bytes)
//
// Optional variables have sensible defaults; see .env.example.
//
// Returns an error if any required variable is missing or if validation fails.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	issuerBaseURL, err := getEnvRequired("AUTH0_ISSUER_BASE_URL")
	if err != nil {
		return nil, err
	}

	apiToken, err := getEnvRequired("AUTH0_MANAGEMENT_API_TOKEN")
	if err != nil {
		return nil, err
	}

	clientID, err := getEnvRequired("AUTH0_CLIENT_ID")
	if err != nil {
		return nil, err
	}

	clientSecret, err := getEnvRequired("AUTH0_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	sessionSecret, err := getEnvRequired("SESSION_SECRET")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENV", "development"),
			AppURL:      getEnv("APP_URL", "http://localhost:8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL:  strings.TrimRight(issuerBaseURL, "/"),
			APIToken: apiToken,
		},
		OAuth: OAuthConfig{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  getEnv("AUTH_REDIRECT_URL", "http://localhost:8080/api/auth/callback"),
		},
		Session: SessionConfig{
			Secret: []byte(sessionSecret),
			Expiry: getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if all required configuration is present and valid.
// It verifies port numbers, URL formats, and the session secret length.
// Called automatically by Load() but can also be called independently
// for testing.
//
// Returns an error describing the first validation failure encountered,
// or nil if all configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be a valid integer: %w", err)
	}

	if _, err := url.ParseRequestURI(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if c.Upstream.APIToken == "" {
		return fmt.Errorf("management API token is required")
	}

	if c.OAuth.ClientID == "" {
		return fmt.Errorf("OAuth client ID is required")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("OAuth client secret is required")
	}
	if _, err := url.ParseRequestURI(c.OAuth.RedirectURL); err != nil {
		return fmt.Errorf("invalid OAuth redirect URL: %w", err)
	}

	if _, err := url.ParseRequestURI(c.Server.AppURL); err != nil {
		return fmt.Errorf("invalid app URL: %w", err)
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
// Controls the Secure flag on session cookies.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions for environment variable parsing

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired retrieves a required environment variable.
// Returns an error if the variable is not set or is empty.
func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

// getEnvAsInt retrieves an environment variable as an integer with a
// default fallback. Unparseable values fall back to the default.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration
// with a default fallback. Supports Go duration format: "300ms", "1.5h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice retrieves a comma-separated environment variable as a
// string slice with a default fallback.
//
// Example:
//
//	// ALLOWED_ORIGINS=http://localhost:3000,https://example.com
//	origins := getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
