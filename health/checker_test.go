package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestResultConstructors(t *testing.T) {
	h := Healthy("fine")
	if h.Status != StatusHealthy || h.Message != "fine" || h.Timestamp.IsZero() {
		t.Errorf("Healthy() = %+v", h)
	}

	d := Degraded("limping")
	if d.Status != StatusDegraded {
		t.Errorf("Degraded() = %+v", d)
	}

	cause := errors.New("boom")
	u := Unhealthy("down", cause)
	if u.Status != StatusUnhealthy || u.Error != cause {
		t.Errorf("Unhealthy() = %+v", u)
	}
}

func TestResult_WithDetails(t *testing.T) {
	r := Healthy("ok").WithDetails(map[string]any{"connections": 5})
	if r.Details["connections"] != 5 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	called := false
	c := NewCheckerFunc("probe", func(ctx context.Context) Result {
		called = true
		return Healthy("ok")
	})

	if c.Name() != "probe" {
		t.Errorf("Name() = %q", c.Name())
	}
	r := c.Check(context.Background())
	if !called || r.Status != StatusHealthy {
		t.Errorf("Check() = %+v, called = %v", r, called)
	}
}
