// Package management provides a pre-configured HTTP client for the identity
// provider's user-management API. The client is bound to a single base URL
// and a static bearer credential; it is constructed once at process start
// and injected wherever upstream access is needed.
//
// The client deliberately carries no timeout, retry, or backoff: every call
// is a single blocking round trip, and any failure propagates to the caller
// as an error. Upstream error details are logged here and never surfaced to
// HTTP clients.
package management

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/config"
	"github.com/rs/zerolog/log"
)

// Client talks to the management API of the identity provider.
// All methods take a context for propagation and return explicit errors.
type Client struct {
	baseURL string       // Issuer base URL without trailing slash
	token   string       // Static bearer credential
	http    *http.Client // Underlying HTTP client, no timeout configured
}

// NewClient creates a management API client bound to the configured base
// URL and bearer token.
//
// Example:
//
//	client := management.NewClient(&cfg.Upstream)
//	profile, err := client.GetUser(ctx, "auth0|abc123")
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		http:    &http.Client{},
	}
}

// GetUser fetches a single user record by its subject identifier.
// Returns the profile fields the dashboard needs: email, name, picture,
// and the email-verified flag.
func (c *Client) GetUser(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, "get_user", http.MethodGet, "/api/v2/users/"+url.PathEscape(userID), nil, nil, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateName proxies a partial update of the user's display name.
// Validation of the name happens at the handler layer; this method sends
// the value unchanged.
func (c *Client) UpdateName(ctx context.Context, userID, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, "update_name", http.MethodPatch, "/api/v2/users/"+url.PathEscape(userID), nil, body, nil)
}

// SendVerificationEmail triggers an upstream job that resends the
// verification email for the given user.
func (c *Client) SendVerificationEmail(ctx context.Context, userID string) error {
	body := map[string]string{"user_id": userID}
	return c.do(ctx, "verification_email", http.MethodPost, "/api/v2/jobs/verification-email", nil, body, nil)
}

// ListUsers fetches the user list in upstream order. No pagination
// parameters are sent; the upstream default page size applies.
func (c *Client) ListUsers(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := c.do(ctx, "list_users", http.MethodGet, "/api/v2/users", nil, nil, &accounts)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// CountUsers returns the total user count reported by the upstream.
// It requests a zero-size page with totals included so no user records
// are transferred. A missing total is reported as 0.
func (c *Client) CountUsers(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("per_page", "0")
	query.Set("include_totals", "true")
	query.Set("fields", "user_id")

	var result struct {
		Total int `json:"total"`
	}
	if err := c.do(ctx, "count_users", http.MethodGet, "/api/v2/users", query, nil, &result); err != nil {
		return 0, err
	}
	return result.Total, nil
}

// DailyStats fetches the daily login time series starting at the given
// day. The from parameter uses the provider's compact day format
// (YYYYMMDD).
func (c *Client) DailyStats(ctx context.Context, from string) ([]models.DailyStat, error) {
	query := url.Values{}
	query.Set("from", from)

	var stats []models.DailyStat
	if err := c.do(ctx, "daily_stats", http.MethodGet, "/api/v2/stats/daily", query, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Ping verifies connectivity to the management API for readiness checks.
// It issues the same zero-size totals query as CountUsers and discards
// the result.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.CountUsers(ctx)
	return err
}

// do executes a single management API round trip. The request carries the
// bearer credential and JSON content headers; non-2xx responses become
// errors with the upstream body logged but not returned.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, query, body, out)
	observeRequest(operation, err, time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("Management API request failed")
		return fmt.Errorf("management API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Upstream error bodies stay server-side; callers get only the status.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("upstream_body", string(detail)).
			Msg("Management API returned an error")
		return fmt.Errorf("management API returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to decode management API response")
		return fmt.Errorf("failed to decode management API response: %w", err)
	}

	return nil
}
