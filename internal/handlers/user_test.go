package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/internal/services"
	"github.com/ieraasyl/userboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing

type MockManagementAPI struct {
	mock.Mock
}

func (m *MockManagementAPI) GetUser(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockManagementAPI) UpdateName(ctx context.Context, userID, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *MockManagementAPI) SendVerificationEmail(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Test helper functions

func setupUserRouter(t *testing.T) (*chi.Mux, *MockManagementAPI, *services.SessionService) {
	t.Helper()

	mockAPI := new(MockManagementAPI)
	sessions := services.NewSessionService(testutil.SessionConfig())
	handler := NewUserHandler(mockAPI, sessions)

	r := chi.NewRouter()
	r.Get("/api/user/{id}", handler.GetUser)
	r.Patch("/api/user/{id}", handler.UpdateName)
	r.Post("/api/user/{id}", handler.PerformAction)

	return r, mockAPI, sessions
}

func addSessionCookie(t *testing.T, req *http.Request, sessions *services.SessionService, subject string) {
	t.Helper()

	token, _, err := sessions.Issue(testutil.Session(subject))
	require.NoError(t, err)
	testutil.SetCookie(req, services.SessionCookieName, token)
}

// Tests

func TestGetUser(t *testing.T) {
	t.Run("returns profile for own subject", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		profile := &models.Profile{
			Email:         "alice@example.com",
			Name:          "Alice",
			Picture:       "https://example.com/alice.png",
			EmailVerified: true,
		}
		mockAPI.On("GetUser", mock.Anything, "auth0|alice").Return(profile, nil)

		req := testutil.MakeRequest(t, http.MethodGet, "/api/user/auth0|alice", nil)
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var got models.Profile
		testutil.ParseJSONResponse(t, rec, &got)
		assert.Equal(t, *profile, got)

		mockAPI.AssertExpectations(t)
	})

	t.Run("rejects request without session", func(t *testing.T) {
		r, mockAPI, _ := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodGet, "/api/user/auth0|alice", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
		mockAPI.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("rejects session for a different subject", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodGet, "/api/user/auth0|alice", nil)
		addSessionCookie(t, req, sessions, "auth0|bob")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
		mockAPI.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("maps upstream failure to generic error", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		mockAPI.On("GetUser", mock.Anything, "auth0|alice").Return(nil, errors.New("upstream exploded"))

		req := testutil.MakeRequest(t, http.MethodGet, "/api/user/auth0|alice", nil)
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusInternalServerError)
		assert.Contains(t, rec.Body.String(), "Something went wrong")
		assert.NotContains(t, rec.Body.String(), "upstream exploded")
	})
}

func TestUpdateName(t *testing.T) {
	t.Run("proxies a valid name unchanged", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		mockAPI.On("UpdateName", mock.Anything, "auth0|alice", "  Alice Cooper  ").Return(nil)

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": "  Alice Cooper  "})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)
		assert.Contains(t, rec.Body.String(), "Name updated successfully.")
		mockAPI.AssertExpectations(t)
	})

	t.Run("accepts a name of exactly 300 characters", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		name := strings.Repeat("a", 300)
		mockAPI.On("UpdateName", mock.Anything, "auth0|alice", name).Return(nil)

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": name})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)
		mockAPI.AssertExpectations(t)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": ""})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Name must be between 1 and 300 characters")
		mockAPI.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a name over 300 characters", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": strings.Repeat("a", 301)})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Name must be between 1 and 300 characters")
		mockAPI.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := httptest.NewRequest(http.MethodPatch, "/api/user/auth0|alice", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		mockAPI.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires the subject to match", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": "Eve"})
		addSessionCookie(t, req, sessions, "auth0|eve")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusUnauthorized)
		mockAPI.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maps upstream failure to generic error", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		mockAPI.On("UpdateName", mock.Anything, "auth0|alice", "Alice").Return(errors.New("boom"))

		req := testutil.MakeRequest(t, http.MethodPatch, "/api/user/auth0|alice",
			map[string]string{"name": "Alice"})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusInternalServerError)
		assert.Contains(t, rec.Body.String(), "Something went wrong")
	})
}

func TestPerformAction(t *testing.T) {
	t.Run("triggers the verification email job", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		mockAPI.On("SendVerificationEmail", mock.Anything, "auth0|alice").Return(nil)

		req := testutil.MakeRequest(t, http.MethodPost, "/api/user/auth0|alice",
			map[string]string{"action": "resendVerificationEmail"})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)
		assert.Contains(t, rec.Body.String(), "Verification email sent successfully.")
		mockAPI.AssertExpectations(t)
	})

	t.Run("rejects an unrecognized action", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		req := testutil.MakeRequest(t, http.MethodPost, "/api/user/auth0|alice",
			map[string]string{"action": "deleteAccount"})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "Invalid action provided")
		mockAPI.AssertNotCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything)
	})

	t.Run("maps upstream failure to generic error", func(t *testing.T) {
		r, mockAPI, sessions := setupUserRouter(t)

		mockAPI.On("SendVerificationEmail", mock.Anything, "auth0|alice").Return(errors.New("job failed"))

		req := testutil.MakeRequest(t, http.MethodPost, "/api/user/auth0|alice",
			map[string]string{"action": "resendVerificationEmail"})
		addSessionCookie(t, req, sessions, "auth0|alice")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusInternalServerError)
		assert.Contains(t, rec.Body.String(), "Something went wrong")
	})
}
