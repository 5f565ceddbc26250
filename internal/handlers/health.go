package handlers

import (
	"context"
	"net/http"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports store and cache status
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a health handler for the named dependencies
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check.Health(r.Context()); err != nil {
			body[name] = "down"
			body["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "up"
	}

	writeJSON(w, status, body)
}
