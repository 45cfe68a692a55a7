package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/internal/services"
	"github.com/ieraasyl/userboard/internal/testutil"
	"github.com/ieraasyl/userboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

func setupAuthHandler(t *testing.T, issuerURL string) (*AuthHandler, *services.SessionService) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        "8080",
			Environment: "test",
			AppURL:      "http://localhost:8080",
		},
		Upstream: config.UpstreamConfig{
			BaseURL:  issuerURL,
			APIToken: "test-token",
		},
		OAuth: config.OAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/api/auth/callback",
		},
		Session: *testutil.SessionConfig(),
	}

	sessions := services.NewSessionService(&cfg.Session)
	return NewAuthHandler(cfg, sessions), sessions
}

// fakeProvider serves the token and userinfo endpoints of the identity
// provider for callback tests.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"provider-access-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"auth0|alice","email":"alice@example.com","name":"Alice","picture":"https://example.com/alice.png"}`))
	})
	return httptest.NewServer(mux)
}

// Tests

func TestLogin(t *testing.T) {
	t.Run("redirects to provider with state cookie", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/login", nil)
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusTemporaryRedirect)

		location := rec.Header().Get("Location")
		assert.Contains(t, location, "https://tenant.example.auth0.com/authorize")
		assert.Contains(t, location, "client_id=client-id")
		assert.Contains(t, location, "scope=openid+profile+email")

		stateCookie := testutil.AssertCookie(t, rec, "auth_state")
		require.NotNil(t, stateCookie)
		assert.NotEmpty(t, stateCookie.Value)
		assert.Equal(t, 600, stateCookie.MaxAge) // 10 minutes
		assert.Contains(t, location, "state="+stateCookie.Value)
	})

	t.Run("generates unique state for each request", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		var states []string
		for i := 0; i < 3; i++ {
			req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/login", nil)
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			cookie := testutil.AssertCookie(t, rec, "auth_state")
			require.NotNil(t, cookie)
			states = append(states, cookie.Value)
		}

		assert.NotEqual(t, states[0], states[1])
		assert.NotEqual(t, states[1], states[2])
	})
}

func TestCallback(t *testing.T) {
	t.Run("completes login and sets session cookie", func(t *testing.T) {
		provider := fakeProvider(t)
		defer provider.Close()

		handler, sessions := setupAuthHandler(t, provider.URL)

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/callback?state=good-state&code=auth-code", nil)
		testutil.SetCookie(req, "auth_state", "good-state")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusSeeOther)
		assert.Equal(t, "http://localhost:8080", rec.Header().Get("Location"))

		sessionCookie := testutil.AssertCookie(t, rec, services.SessionCookieName)
		require.NotNil(t, sessionCookie)
		assert.True(t, sessionCookie.HttpOnly)

		// Round-trip the issued token through session verification
		verify := testutil.MakeRequest(t, http.MethodGet, "/", nil)
		testutil.SetCookie(verify, services.SessionCookieName, sessionCookie.Value)
		session, ok := sessions.CurrentSession(verify)
		require.True(t, ok)
		assert.Equal(t, "auth0|alice", session.Subject)
		assert.Equal(t, "alice@example.com", session.Email)
	})

	t.Run("fails on state mismatch", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/callback?state=wrong&code=auth-code", nil)
		testutil.SetCookie(req, "auth_state", "expected")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Invalid auth state")
	})

	t.Run("fails without state cookie", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/callback?state=anything&code=auth-code", nil)
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
	})

	t.Run("fails without authorization code", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/callback?state=good-state", nil)
		testutil.SetCookie(req, "auth_state", "good-state")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Missing authorization code")
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears session cookie and redirects to provider logout", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/logout", nil)
		rec := httptest.NewRecorder()

		handler.Logout(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusSeeOther)

		location := rec.Header().Get("Location")
		assert.Contains(t, location, "https://tenant.example.auth0.com/v2/logout")
		assert.Contains(t, location, "client_id=client-id")
		assert.Contains(t, location, "returnTo=http%3A%2F%2Flocalhost%3A8080")

		cookie := testutil.AssertCookie(t, rec, services.SessionCookieName)
		require.NotNil(t, cookie)
		assert.Equal(t, -1, cookie.MaxAge)
		assert.Empty(t, cookie.Value)
	})
}

func TestMe(t *testing.T) {
	t.Run("returns the current session", func(t *testing.T) {
		handler, sessions := setupAuthHandler(t, "https://tenant.example.auth0.com")

		token, _, err := sessions.Issue(&models.Session{
			Subject: "auth0|alice",
			Email:   "alice@example.com",
			Name:    "Alice",
		})
		require.NoError(t, err)

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/me", nil)
		testutil.SetCookie(req, services.SessionCookieName, token)
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var got models.Session
		testutil.ParseJSONResponse(t, rec, &got)
		assert.Equal(t, "auth0|alice", got.Subject)
	})

	t.Run("rejects requests without a session", func(t *testing.T) {
		handler, _ := setupAuthHandler(t, "https://tenant.example.auth0.com")

		req := testutil.MakeRequest(t, http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
	})
}
