package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/RafexStrike/eventment-server/internal/metrics"
)

// RootMessage is the plain-text readiness banner served at "/".
const RootMessage = "Eventment server is ready to be used!"

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthChecker reports readiness of the server's dependencies
type HealthChecker struct {
	store     Pinger
	version   string
	gitCommit string
	timeout   time.Duration
}

// NewHealthChecker creates a new health checker with the given dependencies
func NewHealthChecker(store Pinger, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		version:   version,
		gitCommit: gitCommit,
		timeout:   2 * time.Second,
	}
}

// Readyz answers 200 when every check passes and 503 otherwise.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check if server is shutting down (graceful shutdown in progress)
		select {
		case <-r.Context().Done():
			respondHealth(w, http.StatusServiceUnavailable, HealthCheck{Status: "shutting_down"})
			return
		default:
		}

		checks := map[string]CheckResult{
			"database": h.checkDatabase(r.Context()),
		}

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for name, check := range checks {
			value := 2.0
			if check.Status == "fail" {
				value = 0
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
			}
			metrics.HealthCheckStatus.WithLabelValues(name).Set(value)
			metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(check.LatencyMs))
		}

		respondHealth(w, statusCode, HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// checkDatabase pings MongoDB with its own short deadline
func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.store == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Document store not initialized",
		}
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.store.Ping(pingCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "MongoDB ping failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = "MongoDB ping timed out"
		}
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details: map[string]any{
				"error":       err.Error(),
				"remediation": "Check MONGODB_URI or DB_USERNAME/DB_PASSWORD and cluster network access",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   "MongoDB reachable",
		LatencyMs: latency,
	}
}

// Healthz returns a lightweight liveness response
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, healthResponse{Status: "ok"})
	})
}

// Root serves the plain-text banner the frontend probes on startup.
func Root() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(RootMessage))
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
