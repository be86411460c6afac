package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubParser struct {
	userID uuid.UUID
	err    error
}

func (s stubParser) ParseAccess(string) (uuid.UUID, string, error) {
	return s.userID, "", s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/items/:id", handlers...)
	return r
}

func get(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_PerUser(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	limit := RateLimitMiddleware(2, time.Minute)
	as := func(id uuid.UUID) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextUserIDKey, id) }
	}

	ra := newEngine(as(alice), limit)
	rb := newEngine(as(bob), limit)

	assert.Equal(t, http.StatusOK, get(ra, "/items/1", "").Code)
	w := get(ra, "/items/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get(ra, "/items/1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, get(rb, "/items/1", "").Code)
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	r := newEngine(AuthMiddleware(stubParser{userID: userID}), func(c *gin.Context) {
		v, _ := c.Get(ContextUserIDKey)
		assert.Equal(t, userID, v)
	})
	assert.Equal(t, http.StatusOK, get(r, "/items/1", "Bearer token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/items/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/items/1", "Basic abc").Code)

	bad := newEngine(AuthMiddleware(stubParser{err: errors.New("expired")}))
	assert.Equal(t, http.StatusUnauthorized, get(bad, "/items/1", "Bearer token").Code)
}

func TestUUIDValidator(t *testing.T) {
	r := newEngine(UUIDValidator("id"))

	assert.Equal(t, http.StatusOK, get(r, "/items/"+uuid.NewString(), "").Code)

	w := get(r, "/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}

func TestErrorHandler_RespondsWhenNothingWritten(t *testing.T) {
	r := newEngine(ErrorHandler(), func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Abort()
	})

	w := get(r, "/items/1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}
