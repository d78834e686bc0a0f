package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-reports/internal/cache"
	"github.com/simaogato/wealthflow-reports/internal/testutil"
	"github.com/simaogato/wealthflow-reports/internal/usecase/report"
)

const testToken = "test-token"

type fakeFlusher struct {
	flushed int
}

func (f *fakeFlusher) Flush() { f.flushed++ }

func newTestRouter(t *testing.T) (http.Handler, *report.ReportService, *fakeFlusher) {
	t.Helper()
	c, err := cache.NewReportCache(10)
	require.NoError(t, err)
	service := report.NewReportService(c)
	flusher := &fakeFlusher{}
	logger := &log.Logger{Level: log.InfoLevel, Writer: &log.IOWriter{Writer: io.Discard}}

	router := NewRouter(&Handler{ReportService: service, Snapshots: flusher}, testToken, []string{"http://localhost:3000"}, logger)
	return router, service, flusher
}

func warm(t *testing.T, service *report.ReportService) {
	t.Helper()
	ctx := context.Background()
	input := testutil.ExamplePortfolio()
	_, err := service.GetAssetTypeDistribution(ctx, input)
	require.NoError(t, err)
	_, err = service.GetAssetTypeDistribution(ctx, input)
	require.NoError(t, err)
	_, err = service.GetLiquidityAnalysis(ctx, input)
	require.NoError(t, err)
}

func do(t *testing.T, router http.Handler, method, target, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w, body := do(t, router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["cacheSize"])
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestAdmin_RequiresToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "Missing", token: "", want: "missing authorization header"},
		{name: "Wrong", token: "nope", want: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, router, http.MethodGet, "/admin/cache/stats", tt.token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestAdmin_CacheStats(t *testing.T) {
	router, service, _ := newTestRouter(t)
	warm(t, service)

	w, body := do(t, router, http.MethodGet, "/admin/cache/stats", testToken)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["hits"])
	assert.Equal(t, float64(2), body["misses"])
	assert.InDelta(t, 1.0/3.0, body["hitRate"], 1e-9)
	assert.Equal(t, float64(2), body["size"])
	assert.Equal(t, float64(10), body["capacity"])
}

func TestAdmin_InvalidateCache(t *testing.T) {
	t.Run("By family", func(t *testing.T) {
		router, service, flusher := newTestRouter(t)
		warm(t, service)

		w, body := do(t, router, http.MethodDelete, "/admin/cache?family="+report.FamilyLiquidity, testToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), body["removed"])
		assert.Equal(t, float64(1), body["size"])
		assert.Equal(t, 0, flusher.flushed)
	})

	t.Run("Unknown family", func(t *testing.T) {
		router, service, _ := newTestRouter(t)
		warm(t, service)

		w, body := do(t, router, http.MethodDelete, "/admin/cache?family=net_worth", testToken)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, body["error"])
		assert.Equal(t, 2, service.CacheSize())
	})

	t.Run("By pattern", func(t *testing.T) {
		router, service, _ := newTestRouter(t)
		warm(t, service)

		w, body := do(t, router, http.MethodDelete, "/admin/cache?pattern=asset_type", testToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), body["removed"])
		assert.Equal(t, 1, service.CacheSize())
	})

	t.Run("Everything", func(t *testing.T) {
		router, service, flusher := newTestRouter(t)
		warm(t, service)

		w, body := do(t, router, http.MethodDelete, "/admin/cache", testToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), body["removed"])
		assert.Equal(t, float64(0), body["size"])
		assert.Equal(t, 1, flusher.flushed)
	})
}

func TestCORS_Preflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/admin/cache/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/admin/cache/stats", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
