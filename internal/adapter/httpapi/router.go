// Package httpapi exposes health and cache administration endpoints over HTTP.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phuslu/log"

	"github.com/simaogato/wealthflow-reports/internal/cache"
	"github.com/simaogato/wealthflow-reports/internal/usecase/report"
)

// Flusher is implemented by snapshot stores that keep copies in memory
type Flusher interface {
	Flush()
}

// Handler serves the admin endpoints
type Handler struct {
	ReportService *report.ReportService
	Snapshots     Flusher // Optional
}

// NewRouter creates the admin router
// Everything under /admin requires the bearer token; /healthz is open.
func NewRouter(h *Handler, apiToken string, allowedOrigins []string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(newCORS(allowedOrigins).Handler)

	r.Get("/healthz", h.Health)

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireToken(apiToken))
		r.Get("/cache/stats", h.CacheStats)
		r.Delete("/cache", h.InvalidateCache)
	})

	return r
}

func newCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Health reports liveness together with the current cache size
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"cacheSize": h.ReportService.CacheSize(),
	})
}

// CacheStats returns the report cache statistics
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, newStatsResponse(h.ReportService.Stats()))
}

// InvalidateCache removes report cache entries
// Logic:
// 1. ?family= removes every entry of one analytic
// 2. ?pattern= removes every key containing the pattern
// 3. Without parameters the whole cache and the snapshot store are cleared
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	family := r.URL.Query().Get("family")
	pattern := r.URL.Query().Get("pattern")

	var removed int
	switch {
	case family != "":
		n, err := h.ReportService.InvalidateFamily(family)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		removed = n
	case pattern != "":
		removed = h.ReportService.InvalidateByPattern(pattern)
	default:
		removed = h.ReportService.CacheSize()
		h.ReportService.ClearCache()
		if h.Snapshots != nil {
			h.Snapshots.Flush()
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"size":    h.ReportService.CacheSize(),
	})
}

type statsResponse struct {
	Hits                   int64   `json:"hits"`
	Misses                 int64   `json:"misses"`
	HitRate                float64 `json:"hitRate"`
	AverageComputationTime float64 `json:"averageComputationTime"` // Milliseconds
	Size                   int     `json:"size"`
	Capacity               int     `json:"capacity"`
}

func newStatsResponse(stats cache.Stats) statsResponse {
	return statsResponse{
		Hits:                   stats.Hits,
		Misses:                 stats.Misses,
		HitRate:                stats.HitRate(),
		AverageComputationTime: float64(stats.AverageComputationTime.Microseconds()) / 1000,
		Size:                   stats.Size,
		Capacity:               stats.Capacity,
	}
}

// requireToken rejects requests whose Authorization header does not carry the token
func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			got := strings.TrimPrefix(header, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request with the chi request ID
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
