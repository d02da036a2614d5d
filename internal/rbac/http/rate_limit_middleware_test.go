package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(PrincipalMiddleware("X-User-ID", createTestLogger()))
	router.Use(RateLimitMiddleware(ctx, rps, burst, createTestLogger()))
	router.GET("/test", okHandler)
	return router
}

func doAs(router *gin.Engine, userID uuid.UUID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-User-ID", userID.String())
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(t, 10, 20)
	userID := uuid.Must(uuid.NewV7())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doAs(router, userID).Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := newRateLimitedRouter(t, 0.5, 2)
	userID := uuid.Must(uuid.NewV7())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doAs(router, userID).Code)
	}

	w := doAs(router, userID)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_IndependentPerUser(t *testing.T) {
	router := newRateLimitedRouter(t, 0.5, 1)
	first := uuid.Must(uuid.NewV7())
	second := uuid.Must(uuid.NewV7())

	assert.Equal(t, http.StatusOK, doAs(router, first).Code)
	assert.Equal(t, http.StatusTooManyRequests, doAs(router, first).Code)
	assert.Equal(t, http.StatusOK, doAs(router, second).Code)
}

func TestRateLimitMiddleware_RequiresPrincipal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, 10, 10, createTestLogger()))
	router.GET("/test", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiterStore_Sweep(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	stale := uuid.Must(uuid.NewV7())
	fresh := uuid.Must(uuid.NewV7())

	store.getLimiter(stale)
	store.getLimiter(fresh)

	val, ok := store.limiters.Load(stale)
	require.True(t, ok)
	entry := val.(*rateLimiterEntry)
	entry.mu.Lock()
	entry.lastAccess = time.Now().Add(-2 * time.Hour)
	entry.mu.Unlock()

	store.sweep(time.Now().Add(-time.Hour))

	_, ok = store.limiters.Load(stale)
	assert.False(t, ok)
	_, ok = store.limiters.Load(fresh)
	assert.True(t, ok)
}

func TestRateLimiterStore_SameLimiterPerUser(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	userID := uuid.Must(uuid.NewV7())

	assert.Same(t, store.getLimiter(userID), store.getLimiter(userID))
}
