package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckerAggregation(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(StorageCheck(func(context.Context) error { return nil }))
	hc.RegisterCheck(ProviderCheck(func() bool { return true }))

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusHealthy {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Errorf("got %d checks, want 2", len(resp.Checks))
	}
}

func TestHealthCheckerCriticalFailure(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(StorageCheck(func(context.Context) error { return errors.New("redis down") }))

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusUnhealthy {
		t.Errorf("status = %q, want unhealthy on a critical failure", resp.Status)
	}
	if resp.Checks["storage"].Message != "redis down" {
		t.Errorf("check message = %q", resp.Checks["storage"].Message)
	}
}

func TestHealthCheckerNonCriticalDegrades(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(StorageCheck(func(context.Context) error { return nil }))
	hc.RegisterCheck(ProviderCheck(func() bool { return false }))

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusDegraded {
		t.Errorf("status = %q, want degraded when only the provider is down", resp.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(StorageCheck(func(context.Context) error { return errors.New("gone") }))

	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest("GET", "/health/ready", nil))
	if rec.Code != 503 {
		t.Errorf("readiness status = %d, want 503", rec.Code)
	}
}
