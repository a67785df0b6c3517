package cache

import (
	"testing"
	"time"
)

func TestPolicy_Resolve(t *testing.T) {
	p := Policy{
		DefaultTTL: time.Hour,
		OperationTTLs: map[string]time.Duration{
			"sentiment": 24 * time.Hour,
			"qa":        30 * time.Minute,
		},
	}

	tests := []struct {
		op   string
		want time.Duration
	}{
		{"sentiment", 24 * time.Hour},
		{"qa", 30 * time.Minute},
		{"unknown", time.Hour},
		{"", time.Hour},
	}

	for _, tt := range tests {
		if got := p.Resolve(tt.op); got != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestPolicy_ResolveClampsToMax(t *testing.T) {
	p := Policy{
		DefaultTTL:    time.Hour,
		MaxTTL:        2 * time.Hour,
		OperationTTLs: map[string]time.Duration{"sentiment": 24 * time.Hour},
	}

	if got := p.Resolve("sentiment"); got != 2*time.Hour {
		t.Errorf("Resolve(sentiment) = %s, want clamp to 2h", got)
	}
}

func TestPolicy_EffectiveTTL(t *testing.T) {
	p := Policy{DefaultTTL: time.Hour, MaxTTL: 3 * time.Hour}

	tests := []struct {
		name     string
		override time.Duration
		want     time.Duration
	}{
		{"zero falls back to default", 0, time.Hour},
		{"negative falls back to default", -time.Minute, time.Hour},
		{"explicit override", 10 * time.Minute, 10 * time.Minute},
		{"override clamped", 5 * time.Hour, 3 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%s) = %s, want %s", tt.override, got, tt.want)
			}
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	t.Run("default valid", func(t *testing.T) {
		if err := DefaultPolicy().Validate(); err != nil {
			t.Errorf("DefaultPolicy().Validate() = %v", err)
		}
	})

	t.Run("collects all violations", func(t *testing.T) {
		p := Policy{
			DefaultTTL: 0,
			MaxTTL:     -1,
			OperationTTLs: map[string]time.Duration{
				"bad": 0,
			},
		}
		err := p.Validate()
		ve, ok := err.(*ValidationError)
		if !ok {
			t.Fatalf("Validate() = %T, want *ValidationError", err)
		}
		if len(ve.Violations) != 3 {
			t.Errorf("violations = %v, want 3 entries", ve.Violations)
		}
	})
}
