package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// NewRouter wires the read-only API: /health, /metrics and /records/{category}.
func NewRouter(h *Handler, requestTimeout time.Duration, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(CorrelationIDMiddleware(logger))
	r.Use(MetricsMiddleware)

	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	records := r.PathPrefix("/records").Subrouter()
	records.Use(TimeoutMiddleware(requestTimeout))
	records.HandleFunc("/{category}", h.GetRecords).Methods(http.MethodGet)
	return r
}
