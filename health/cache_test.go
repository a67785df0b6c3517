package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/tiercache/cache"
)

// pingStore is a minimal cache.Store for checker tests.
type pingStore struct {
	mu      sync.Mutex
	pingErr error
}

func (s *pingStore) setErr(err error) {
	s.mu.Lock()
	s.pingErr = err
	s.mu.Unlock()
}

func (s *pingStore) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	return nil, 0, false, nil
}

func (s *pingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (s *pingStore) Delete(ctx context.Context, key string) (bool, error) { return false, nil }

func (s *pingStore) DeleteMany(ctx context.Context, keys []string) (int64, error) { return 0, nil }

func (s *pingStore) ScanKeys(ctx context.Context, pattern string, batchSize int64, fn func(keys []string) error) error {
	return nil
}

func (s *pingStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *pingStore) Close() error { return nil }

func TestStoreChecker(t *testing.T) {
	store := &pingStore{}
	checker := NewStoreChecker("redis", store, time.Second)

	if checker.Name() != "redis" {
		t.Errorf("Name() = %q", checker.Name())
	}

	r := checker.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("Check() = %+v, want healthy", r)
	}

	store.setErr(errors.New("refused"))
	r = checker.Check(context.Background())
	if r.Status != StatusUnhealthy || r.Error == nil {
		t.Errorf("Check() during outage = %+v, want unhealthy", r)
	}
}

func newCheckedCache(t *testing.T, store cache.Store) *cache.TieredCache {
	t.Helper()
	c, err := cache.New(context.Background(), cache.Options{
		Preset:        "simple",
		Store:         store,
		SweepInterval: -1,
	})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheChecker_Healthy(t *testing.T) {
	c := newCheckedCache(t, &pingStore{})
	checker := NewCacheChecker(c, CacheCheckerConfig{})

	r := checker.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("Check() = %+v, want healthy", r)
	}
	if r.Details["state"] != "connected" {
		t.Errorf("Details[state] = %v", r.Details["state"])
	}
}

// TestCacheChecker_Degraded verifies a cache in graceful degradation maps
// to the degraded health status, not unhealthy.
func TestCacheChecker_Degraded(t *testing.T) {
	store := &failingStore{}
	c := newCheckedCache(t, store)

	store.fail = true
	c.Get(context.Background(), "trigger")

	checker := NewCacheChecker(c, CacheCheckerConfig{})
	r := checker.Check(context.Background())
	if r.Status != StatusDegraded {
		t.Errorf("Check() = %+v, want degraded", r)
	}
}

func TestCacheChecker_CancelledContext(t *testing.T) {
	c := newCheckedCache(t, &pingStore{})
	checker := NewCacheChecker(c, CacheCheckerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := checker.Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("Check(cancelled) = %+v, want unhealthy", r)
	}
}

// failingStore flips every call to failure when fail is set.
type failingStore struct {
	pingStore
	fail bool
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	if s.fail {
		return nil, 0, false, errors.New("down")
	}
	return nil, 0, false, nil
}
