package cache

import (
	"context"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key. It leaves
// room for a default small-tier payload embedded literally plus the
// operation name and options digest; TieredKeyer digests any payload
// whose literal embedding would overflow it.
const MaxKeyLength = 640

// ConnectionState describes reachability of the L2 store as observed by the
// orchestrator. Transitions are driven exclusively by L2 outcomes.
type ConnectionState int32

const (
	// StateConnected means the L2 store is reachable and in use.
	StateConnected ConnectionState = iota
	// StateDegraded means the L2 store is unreachable but the cache keeps
	// serving from L1 only (graceful mode).
	StateDegraded
	// StateDisconnected means the L2 store is unreachable and the cache
	// surfaces connectivity errors (strict mode).
	StateDisconnected
)

// String returns the string representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDegraded:
		return "degraded"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Store is the contract for the remote L2 tier.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: every method must honor cancellation/deadlines; no call may
//     block indefinitely.
//   - Errors: transport failures map to *InfrastructureError. A miss is
//     (nil, 0, false, nil), never an error. Implementations do not retry;
//     retries belong to an external resilience collaborator.
type Store interface {
	// Get retrieves the stored bytes and their remaining TTL. A remaining
	// TTL of zero means the backend reports no expiry for the key.
	Get(ctx context.Context, key string) (value []byte, remaining time.Duration, ok bool, err error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Returns true when a key was actually removed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteMany removes keys in bounded batches and returns the number
	// of keys removed.
	DeleteMany(ctx context.Context, keys []string) (int64, error)

	// ScanKeys iterates keys matching a glob pattern in bounded batches,
	// invoking fn once per batch. Iteration stops when fn returns an
	// error or ctx is done; the keyspace is never loaded at once.
	ScanKeys(ctx context.Context, pattern string, batchSize int64, fn func(keys []string) error) error

	// Ping checks reachability of the store.
	Ping(ctx context.Context) error

	// Close releases the store's connection pool.
	Close() error
}

// SetResult distinguishes "cached everywhere" from "cached locally only"
// for best-effort writes in graceful mode.
type SetResult struct {
	StoredInL1 bool
	StoredInL2 bool
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits             uint64
	Misses           uint64
	L1Hits           uint64
	L2Hits           uint64
	HitRatio         float64
	EntryCount       int
	MemoryUsageBytes int64
	Invalidations    uint64
	ConnectionState  ConnectionState
}

// Health reports reachability of the shared L2 tier. In graceful mode this
// is the only place degradation becomes observable.
type Health struct {
	Connected bool
	State     ConnectionState
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
