package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// TieredCache composes the L1 memory tier and the L2 store into a single
// cache. Values found in L2 are promoted into L1 with their remaining TTL.
// When the store becomes unreachable the cache either surfaces the error
// (strict mode) or degrades to L1-only service (graceful mode); the choice
// is fixed at construction.
//
// Contract:
//   - Concurrency: safe for concurrent use from many goroutines.
//   - Errors: a miss is (nil, false, nil), never an error. In graceful
//     mode connectivity failures are absorbed into state, observable only
//     via Stats/Health.
type TieredCache struct {
	l1       *MemoryCache
	store    Store
	codec    *Codec
	keyer    Keyer
	policy   Policy
	resolved ResolvedConfig

	failOnConnErr bool
	hooks         []Hook
	before        []BeforeHook

	state   atomic.Int32
	connMu  sync.Mutex
	connErr error

	sf            singleflight.Group
	invalidations atomic.Uint64
	l2Hits        atomic.Uint64

	reconnectEvery time.Duration
	stop           chan struct{}
	closeOnce      sync.Once
	wg             sync.WaitGroup
}

// Get returns the cached value for key. L1 is consulted first; on miss the
// L2 store is queried, decoded, and promoted into L1 with its remaining
// TTL. Concurrent misses on the same key share one L2 round trip.
func (t *TieredCache) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	start := time.Now()
	t.emitBefore(OpGet, key)
	tier := ""
	defer func() { t.emit(OpGet, key, start, ok, tier, err) }()

	if t.isClosed() {
		return nil, false, ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	if v, hit := t.l1.Get(ctx, key); hit {
		tier = "l1"
		return v, true, nil
	}

	switch t.State() {
	case StateDisconnected:
		// Strict mode: the prior connection error keeps propagating.
		return nil, false, t.lastConnErr()
	case StateDegraded:
		// Graceful mode: L1-only until the prober restores the store.
		return nil, false, nil
	}

	type l2result struct {
		value []byte
		ttl   time.Duration
		ok    bool
	}
	res, err, _ := t.sf.Do(key, func() (any, error) {
		frame, remaining, found, err := t.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			return l2result{}, nil
		}
		v, err := t.codec.DecodeFrame(frame)
		if err != nil {
			return nil, err
		}
		return l2result{value: v, ttl: remaining, ok: true}, nil
	})
	if err != nil {
		if IsSerialization(err) {
			// Corruption is fatal for the operation in both modes.
			return nil, false, err
		}
		return nil, false, t.storeFailed(ctx, err)
	}

	r := res.(l2result)
	if !r.ok {
		return nil, false, nil
	}

	t.l2Hits.Add(1)
	tier = "l2"

	// Promote with the remaining L2 TTL, never longer. A store that
	// reports no expiry falls back to the default policy TTL.
	ttl := r.ttl
	if ttl <= 0 {
		ttl = t.policy.DefaultTTL
	}
	_ = t.l1.Set(ctx, key, r.value, ttl)

	return r.value, true, nil
}

// Set stores value under key in both tiers. ttl <= 0 resolves through the
// policy default. The result reports which tiers accepted the write: in
// graceful mode an unreachable store skips the L2 write instead of
// failing, so callers can distinguish "cached everywhere" from "cached
// locally only".
func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (res SetResult, err error) {
	start := time.Now()
	t.emitBefore(OpSet, key)
	defer func() { t.emit(OpSet, key, start, false, "", err) }()

	if t.isClosed() {
		return SetResult{}, ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return SetResult{}, err
	}

	ttl = t.policy.EffectiveTTL(ttl)

	// Encode up front so a serialization failure caches nothing anywhere.
	frame, err := t.codec.EncodeFrame(value)
	if err != nil {
		return SetResult{}, err
	}

	_ = t.l1.Set(ctx, key, value, ttl)
	res.StoredInL1 = t.l1.maxEntries > 0

	switch t.State() {
	case StateDisconnected:
		return res, t.lastConnErr()
	case StateDegraded:
		return res, nil
	}

	if err := t.store.Set(ctx, key, frame, ttl); err != nil {
		return res, t.storeFailed(ctx, err)
	}
	res.StoredInL2 = true
	return res, nil
}

// Delete removes key from both tiers. Deleting an absent key is not an
// error; the return reports whether either tier held the key.
func (t *TieredCache) Delete(ctx context.Context, key string) (removed bool, err error) {
	start := time.Now()
	t.emitBefore(OpDelete, key)
	defer func() { t.emit(OpDelete, key, start, false, "", err) }()

	if t.isClosed() {
		return false, ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	removed = t.l1.remove(key)

	if t.State() != StateConnected {
		if t.State() == StateDisconnected {
			return removed, t.lastConnErr()
		}
		return removed, nil
	}

	inL2, err := t.store.Delete(ctx, key)
	if err != nil {
		return removed, t.storeFailed(ctx, err)
	}
	return removed || inL2, nil
}

// GetOrLoad returns the cached value for key, or invokes loader on a miss
// and caches its result with the given TTL. Concurrent loads for the same
// key are collapsed into a single loader call.
func (t *TieredCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	if v, ok, err := t.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	v, err, _ := t.sf.Do("load\x00"+key, func() (any, error) {
		// Re-check: another caller may have loaded while we queued.
		if v, ok, err := t.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := t.Set(ctx, key, v, ttl); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// KeyFor computes the deterministic cache key for an operation invocation.
func (t *TieredCache) KeyFor(operation, payload string, options map[string]any) (string, error) {
	return t.keyer.Key(operation, payload, options)
}

// GetOperation looks up the cached result of an operation, generating the
// key from operation, payload, and options. The payload is required.
func (t *TieredCache) GetOperation(ctx context.Context, operation, payload string, options map[string]any) ([]byte, bool, error) {
	if payload == "" {
		return nil, false, ErrPayloadMissing
	}
	key, err := t.KeyFor(operation, payload, options)
	if err != nil {
		return nil, false, err
	}
	return t.Get(ctx, key)
}

// SetOperation caches an operation result with the TTL resolved from the
// per-operation policy. The payload is required.
func (t *TieredCache) SetOperation(ctx context.Context, operation, payload string, options map[string]any, value []byte) (SetResult, error) {
	if payload == "" {
		return SetResult{}, ErrPayloadMissing
	}
	key, err := t.KeyFor(operation, payload, options)
	if err != nil {
		return SetResult{}, err
	}
	return t.Set(ctx, key, value, t.policy.Resolve(operation))
}

// State returns the current connection state.
func (t *TieredCache) State() ConnectionState {
	return ConnectionState(t.state.Load())
}

// Health reports whether the L2 store is currently reachable. In graceful
// mode this is the only surface where degradation is visible.
func (t *TieredCache) Health() Health {
	s := t.State()
	return Health{Connected: s == StateConnected, State: s}
}

// Stats returns a snapshot of cache activity across both tiers.
func (t *TieredCache) Stats() Stats {
	l1Hits := t.l1.Hits()
	l2Hits := t.l2Hits.Load()
	hits := l1Hits + l2Hits
	misses := t.l1.Misses() - l2Hits // L1 misses that L2 also missed

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return Stats{
		Hits:             hits,
		Misses:           misses,
		L1Hits:           l1Hits,
		L2Hits:           l2Hits,
		HitRatio:         ratio,
		EntryCount:       t.l1.Len(),
		MemoryUsageBytes: t.l1.MemoryUsage(),
		Invalidations:    t.invalidations.Load(),
		ConnectionState:  t.State(),
	}
}

// Close stops background goroutines and closes the store. Safe to call
// more than once.
func (t *TieredCache) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stop)
		t.wg.Wait()
		t.l1.Close()
		if t.store != nil {
			err = t.store.Close()
		}
	})
	return err
}

func (t *TieredCache) isClosed() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// storeFailed records a connectivity failure and applies the instance's
// failure mode: strict propagates, graceful degrades and reports a miss.
// A cancelled or expired caller context is not a store failure; it
// propagates untouched and connection state stays put.
func (t *TieredCache) storeFailed(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return err
	}

	ie, ok := err.(*InfrastructureError)
	if !ok {
		ie = &InfrastructureError{Op: "call", Err: err}
	}

	t.connMu.Lock()
	t.connErr = ie
	t.connMu.Unlock()

	if t.failOnConnErr {
		t.state.Store(int32(StateDisconnected))
		return ie
	}
	t.state.Store(int32(StateDegraded))
	return nil
}

func (t *TieredCache) lastConnErr() error {
	if !t.failOnConnErr {
		return nil
	}
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.connErr == nil {
		return ErrNotConnected
	}
	return t.connErr
}

// startReconnectProbe periodically pings the store while degraded and
// flips back to Connected on success. Only graceful instances run it.
func (t *TieredCache) startReconnectProbe() {
	if t.store == nil || t.reconnectEvery <= 0 || t.failOnConnErr {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.reconnectEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if t.State() == StateConnected {
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), t.reconnectEvery)
				err := t.store.Ping(ctx)
				cancel()
				if err == nil {
					t.state.Store(int32(StateConnected))
				}
			case <-t.stop:
				return
			}
		}
	}()
}
