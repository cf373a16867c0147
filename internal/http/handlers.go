package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/lifecycle"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
	"github.com/kjstillabower/jma-weather-collector/internal/store"
	"github.com/kjstillabower/jma-weather-collector/internal/validation"
)

// HealthConfig holds what the health handler checks.
type HealthConfig struct {
	StartTime time.Time
	// CachePing, when set, is called to check cache reachability. Used when backend is memcached.
	CachePing func() error
}

// Handler serves the stores read-only.
type Handler struct {
	storeDir         string
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler reading from storeDir.
func NewHandler(storeDir string, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		storeDir:     storeDir,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// GetRecords handles GET /records/{category}. An optional limit query keeps the newest N entries.
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	category, err := validation.ValidateCategory(mux.Vars(r)["category"])
	if err != nil {
		writeError(w, r, http.StatusNotFound, "UNKNOWN_CATEGORY", err.Error())
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	var records interface{}
	switch category {
	case store.CategoryObservations:
		records, err = loadTail(store.New[models.ObservationRecord](h.storeDir, category, h.logger), limit)
	case store.CategoryForecasts:
		records, err = loadTail(store.New[models.ForecastDayRecord](h.storeDir, category, h.logger), limit)
	}
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func loadTail[T models.Record](s *store.FileStore[T], limit int) ([]T, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"store": "healthy"}
	if result.reason == "store_unreadable" {
		checks["store"] = "unhealthy"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":     result.status,
		"service":    "jma-weather-collector",
		"version":    "dev",
		"checks":     checks,
		"activeRuns": lifecycle.ActiveRuns(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if h.healthConfig != nil && !h.healthConfig.StartTime.IsZero() {
		resp["uptimeSeconds"] = int64(time.Since(h.healthConfig.StartTime).Seconds())
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order: shutting-down > store unreadable > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	// A store dir that does not exist yet is fine: no run has written to it.
	if _, err := os.Stat(h.storeDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return healthResult{"degraded", http.StatusServiceUnavailable, "store_unreadable"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": CorrelationID(r.Context()),
		},
	})
}

// writeStoreError writes a 500 for an unreadable or corrupt store file and logs the cause.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusInternalServerError, "STORE_UNAVAILABLE", "Unable to read store")
	LoggerFrom(r.Context(), zap.NewNop()).Error("store read failed", zap.Error(err))
}
