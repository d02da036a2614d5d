package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qacms/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("Success_ScrapeIncludesAccessDecisions", func(t *testing.T) {
		provider, err := metrics.NewProvider("qacms")
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, provider.Shutdown(ctx)) })

		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), "qacms")
		require.NoError(t, err)
		bm.RecordOperation(ctx, "rbac", "has_permission", metrics.DecisionOf(true))

		server := NewMetricsServer("localhost", 8081, logger, provider)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), `status="granted"`)
	})

	t.Run("Success_HealthWithoutProvider", func(t *testing.T) {
		server := NewMetricsServer("localhost", 8081, logger, nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

		w = httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
