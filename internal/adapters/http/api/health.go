// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/satlens/internal/domain/types"
	"github.com/okian/satlens/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthProvider reports whether the dataset is loaded.
type HealthProvider interface {
	Health() types.Health
}

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	provider HealthProvider
	metrics  http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(provider HealthProvider) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		metrics:  promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz. It answers 200 in both the loading and
// ready states; the body tells them apart.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Health())
}

// HandleMetrics handles GET /metrics from the private registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
