package cache

import "time"

// Policy resolves time-to-live per operation.
type Policy struct {
	// DefaultTTL applies to operations without an explicit entry.
	DefaultTTL time.Duration

	// MaxTTL clamps every resolved TTL when set. Zero means no maximum.
	MaxTTL time.Duration

	// OperationTTLs maps operation names to their TTL.
	OperationTTLs map[string]time.Duration
}

// DefaultPolicy returns the default TTL policy.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: time.Hour,
	}
}

// Validate checks every configured TTL. All violations are reported
// together as a ValidationError.
func (p Policy) Validate() error {
	ve := &ValidationError{}
	if p.DefaultTTL <= 0 {
		ve.add("default_ttl must be > 0, got %s", p.DefaultTTL)
	}
	if p.MaxTTL < 0 {
		ve.add("max_ttl must be >= 0, got %s", p.MaxTTL)
	}
	for op, ttl := range p.OperationTTLs {
		if ttl <= 0 {
			ve.add("operation_ttls[%s] must be > 0, got %s", op, ttl)
		}
	}
	return ve.errOrNil()
}

// Resolve returns the TTL for operation, falling back to DefaultTTL when
// the operation has no explicit entry.
func (p Policy) Resolve(operation string) time.Duration {
	ttl, ok := p.OperationTTLs[operation]
	if !ok {
		ttl = p.DefaultTTL
	}
	return p.clamp(ttl)
}

// EffectiveTTL returns override when positive, the default otherwise,
// clamped to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	return p.clamp(ttl)
}

func (p Policy) clamp(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
