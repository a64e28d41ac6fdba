// Package observability provides the health and metrics HTTP surface
// for long-running chatcore deployments.
package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthStatus represents the health status of the service
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is a single named probe. Critical checks drive readiness;
// non-critical failures only degrade the reported status.
type HealthCheck struct {
	Name      string
	CheckFunc func(context.Context) error
	Timeout   time.Duration
	Critical  bool
}

// HealthChecker manages health checks
type HealthChecker struct {
	checks    map[string]*HealthCheck
	mu        sync.RWMutex
	startTime time.Time
}

// HealthResponse is the body served on /health
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckStatus `json:"checks"`
	System    SystemInfo             `json:"system"`
}

// CheckStatus is one probe's result
type CheckStatus struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// SystemInfo reports process-level runtime stats
type SystemInfo struct {
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemAlloc      uint64 `json:"mem_alloc_mb"`
}

// NewHealthChecker creates an empty health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]*HealthCheck),
		startTime: time.Now(),
	}
}

// RegisterCheck registers a probe. A zero timeout defaults to 5s.
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) {
	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name] = check
}

// StorageCheck probes the session store by loading the snapshot.
func StorageCheck(load func(context.Context) error) *HealthCheck {
	return &HealthCheck{
		Name:      "storage",
		CheckFunc: load,
		Critical:  true,
	}
}

// ProviderCheck reports whether backend credentials are configured.
// Non-critical: the service still works in fallback mode without them.
func ProviderCheck(configured func() bool) *HealthCheck {
	return &HealthCheck{
		Name: "provider",
		CheckFunc: func(context.Context) error {
			if !configured() {
				return errNotConfigured
			}
			return nil
		},
	}
}

var errNotConfigured = &configError{"no API key configured"}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

// Check runs every probe and aggregates the result.
func (hc *HealthChecker) Check(ctx context.Context) HealthResponse {
	hc.mu.RLock()
	checks := make(map[string]*HealthCheck, len(hc.checks))
	for k, v := range hc.checks {
		checks[k] = v
	}
	hc.mu.RUnlock()

	results := make(map[string]CheckStatus)
	overall := HealthStatusHealthy

	for name, check := range checks {
		cctx, cancel := context.WithTimeout(ctx, check.Timeout)
		err := check.CheckFunc(cctx)
		cancel()

		if err == nil {
			results[name] = CheckStatus{Status: HealthStatusHealthy}
			continue
		}
		results[name] = CheckStatus{Status: HealthStatusUnhealthy, Message: err.Error()}
		if check.Critical {
			overall = HealthStatusUnhealthy
		} else if overall == HealthStatusHealthy {
			overall = HealthStatusDegraded
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(hc.startTime).Round(time.Second).String(),
		Checks:    results,
		System: SystemInfo{
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			MemAlloc:      mem.Alloc / 1024 / 1024,
		},
	}
}

// Handler serves the aggregated health report
func (hc *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := hc.Check(r.Context())

		code := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// LivenessHandler always reports alive while the process runs
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// ReadinessHandler reports ready unless a critical check fails
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := hc.Check(r.Context())
		if resp.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
