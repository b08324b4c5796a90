package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionCounter reports how many realtime connections are live.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthHandler reports the reachability of the server's dependencies.
type HealthHandler struct {
	checks   map[string]Pinger
	realtime ConnectionCounter
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler. Nil pingers are skipped; a nil
// realtime counter omits the connection count.
func NewHealthHandler(checks map[string]Pinger, realtime ConnectionCounter) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active, realtime: realtime, timeout: 3 * time.Second}
}

type healthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Connections *int              `json:"connections,omitempty"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "down"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if h.realtime != nil {
		n := h.realtime.ConnectionCount()
		resp.Connections = &n
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
