package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func runHealth(t *testing.T, h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(c)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealth_StorageUp(t *testing.T) {
	pinger := new(mockPinger)
	pinger.On("PingContext", mock.Anything).Return(nil)

	w, resp := runHealth(t, NewHealthHandler(pinger, "postgres"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "postgres", resp.Checks["storage_driver"])
	pinger.AssertExpectations(t)
}

func TestHealth_StorageDown(t *testing.T) {
	pinger := new(mockPinger)
	pinger.On("PingContext", mock.Anything).Return(errors.New("connection refused"))

	w, resp := runHealth(t, NewHealthHandler(pinger, "postgres"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks["storage"], "connection refused")
	pinger.AssertExpectations(t)
}

func TestHealth_MemoryStorage(t *testing.T) {
	w, resp := runHealth(t, NewHealthHandler(nil, "memory"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", resp.Checks["storage_driver"])
}
