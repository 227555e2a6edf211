package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/Togather-Foundation/eventos/internal/metrics"
)

const checkTimeout = 2 * time.Second

// ReadinessCheck returns nil when the dependency it probes is usable.
type ReadinessCheck func(ctx context.Context) error

// HealthCheck represents the readiness status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single readiness check
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type HealthChecker struct {
	checks    map[string]ReadinessCheck
	version   string
	gitCommit string
}

func NewHealthChecker(version, gitCommit string, checks map[string]ReadinessCheck) *HealthChecker {
	return &HealthChecker{checks: checks, version: version, gitCommit: gitCommit}
}

// Healthz is the liveness probe; it never touches dependencies.
func (h *HealthChecker) Healthz(w http.ResponseWriter, r *http.Request) {
	respondHealth(w, http.StatusOK, "ok")
}

// Readyz runs every readiness check and answers 503 if any fails.
func (h *HealthChecker) Readyz(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
		return
	default:
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ready"
	code := http.StatusOK
	results := make(map[string]CheckResult, len(names))
	for _, name := range names {
		result := runCheck(r.Context(), name, h.checks[name])
		if result.Status == "fail" {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		results[name] = result
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(HealthCheck{
		Status:    status,
		Version:   h.version,
		GitCommit: h.gitCommit,
		Checks:    results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func runCheck(ctx context.Context, name string, check ReadinessCheck) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start).Milliseconds()
	metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(latency))

	if err != nil {
		metrics.HealthCheckStatus.WithLabelValues(name).Set(0)
		return CheckResult{Status: "fail", Message: err.Error(), LatencyMs: latency}
	}
	metrics.HealthCheckStatus.WithLabelValues(name).Set(1)
	return CheckResult{Status: "pass", LatencyMs: latency}
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
