package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ieraasyl/userboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHealth(t *testing.T) {
	t.Run("always reports ok without touching upstream", func(t *testing.T) {
		upstream := new(MockPinger)
		handler := NewHealthHandler(upstream)

		req := testutil.MakeRequest(t, http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.Health(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var resp HealthResponse
		testutil.ParseJSONResponse(t, rec, &resp)
		assert.Equal(t, "ok", resp.Status)
		assert.NotEmpty(t, resp.Timestamp)
		upstream.AssertNotCalled(t, "Ping", mock.Anything)
	})
}

func TestReady(t *testing.T) {
	t.Run("reports ok when upstream is reachable", func(t *testing.T) {
		upstream := new(MockPinger)
		upstream.On("Ping", mock.Anything).Return(nil)
		handler := NewHealthHandler(upstream)

		req := testutil.MakeRequest(t, http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusOK)

		var resp HealthResponse
		testutil.ParseJSONResponse(t, rec, &resp)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Services["management_api"])
	})

	t.Run("reports degraded when upstream is unreachable", func(t *testing.T) {
		upstream := new(MockPinger)
		upstream.On("Ping", mock.Anything).Return(errors.New("connection refused"))
		handler := NewHealthHandler(upstream)

		req := testutil.MakeRequest(t, http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()

		handler.Ready(rec, req)

		testutil.AssertStatusCode(t, rec, http.StatusServiceUnavailable)

		var resp HealthResponse
		testutil.ParseJSONResponse(t, rec, &resp)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unreachable", resp.Services["management_api"])
	})
}
