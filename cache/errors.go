package cache

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for cache operations.
var (
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrKeyTooLong     = errors.New("cache: key exceeds max length")
	ErrClosed         = errors.New("cache: cache is closed")
	ErrUnknownPreset  = errors.New("cache: unknown preset")
	ErrStoreRequired  = errors.New("cache: store is required")
	ErrNotConnected   = errors.New("cache: store not connected")
	ErrUnknownHash    = errors.New("cache: unknown hash algorithm")
	ErrNilLoader      = errors.New("cache: loader is nil")
	ErrPayloadMissing = errors.New("cache: payload is required")
)

// ValidationError reports every configuration violation found during
// resolution, not just the first.
type ValidationError struct {
	Violations []string
}

// Error returns all violations joined into one message.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "cache: invalid configuration"
	}
	return "cache: invalid configuration: " + strings.Join(e.Violations, "; ")
}

// add records a violation.
func (e *ValidationError) add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// errOrNil returns the error when at least one violation was recorded.
func (e *ValidationError) errOrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// InfrastructureError wraps a connectivity or transport failure talking to
// the L2 store. In strict mode it is returned to callers; in graceful mode
// it is absorbed into a Degraded state transition.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("cache: store %s failed: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// SerializationError wraps an encode or decode failure on the L2 boundary.
// It is always fatal for the single operation: corrupted bytes are never
// passed through silently.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cache: %s failed: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// IsInfrastructure reports whether err is (or wraps) an InfrastructureError.
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}

// IsSerialization reports whether err is (or wraps) a SerializationError.
func IsSerialization(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrKind classifies an error for operation hooks.
type ErrKind string

const (
	KindNone           ErrKind = ""
	KindValidation     ErrKind = "validation"
	KindInfrastructure ErrKind = "infrastructure"
	KindSerialization  ErrKind = "serialization"
	KindOther          ErrKind = "other"
)

// Kind classifies err into the cache error taxonomy.
func Kind(err error) ErrKind {
	switch {
	case err == nil:
		return KindNone
	case IsValidation(err), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrKeyTooLong),
		errors.Is(err, ErrPayloadMissing):
		return KindValidation
	case IsInfrastructure(err):
		return KindInfrastructure
	case IsSerialization(err):
		return KindSerialization
	default:
		return KindOther
	}
}
