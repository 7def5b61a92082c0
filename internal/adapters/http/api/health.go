package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheLoudSteve/epl-forecast/pkg/metrics"
)

// serviceName is reported by GET /health.
const serviceName = "epl-forecast"

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// healthResponse mirrors the wire schema of GET /health. TableAge is
// reported in seconds.
type healthResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Service   string   `json:"service"`
	TableAge  *float64 `json:"table_age,omitempty"`
}

// HandleHealth handles GET /health requests. The service reports healthy as
// long as it is serving; a missing or stale table degrades status without
// failing the check, since stale data is still served.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
	}
	if age := h.deps.TableAge(r.Context()); age >= 0 {
		seconds := age.Seconds()
		resp.TableAge = &seconds
	} else {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// newMetricsHandler serves the custom Prometheus registry at GET /metrics.
func newMetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
