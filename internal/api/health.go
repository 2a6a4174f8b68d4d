package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/snarg/moodscribe/internal/metrics"
	"github.com/snarg/moodscribe/internal/pipeline"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource exposes the orchestrator's run counters.
type StatsSource interface {
	Stats() pipeline.Stats
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
	Models        []metrics.Backend `json:"models,omitempty"`
	Pipeline      *pipeline.Stats   `json:"pipeline,omitempty"`
}

type HealthHandler struct {
	stats     StatsSource
	checks    map[string]Pinger
	backends  []metrics.Backend
	version   string
	startTime time.Time
	timeout   time.Duration
}

func NewHealthHandler(stats StatsSource, checks map[string]Pinger, backends []metrics.Backend, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		stats:     stats,
		checks:    checks,
		backends:  backends,
		version:   version,
		startTime: startTime,
		timeout:   3 * time.Second,
	}
}

// ServeHTTP reports "healthy" when every check passes and "degraded"
// otherwise. A failed model backend does not take the process out of
// rotation, so the status code stays 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checks))
	status := "healthy"

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := h.checks[name].Ping(ctx)
		cancel()
		if err != nil {
			checks[name] = "error"
			status = "degraded"
		} else {
			checks[name] = "ok"
		}
	}

	resp := HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
		Models:        h.backends,
	}
	if h.stats != nil {
		s := h.stats.Stats()
		resp.Pipeline = &s
	}

	WriteJSON(w, http.StatusOK, resp)
}
