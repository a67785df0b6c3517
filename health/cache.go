package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/tiercache/cache"
)

// StoreChecker pings an L2 store to verify it is reachable.
type StoreChecker struct {
	name    string
	store   cache.Store
	timeout time.Duration
}

// NewStoreChecker creates a checker that pings store. timeout <= 0 means
// one second.
func NewStoreChecker(name string, store cache.Store, timeout time.Duration) *StoreChecker {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &StoreChecker{name: name, store: store, timeout: timeout}
}

func (c *StoreChecker) Name() string { return c.name }

// Check pings the store under the checker's timeout.
func (c *StoreChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return Unhealthy("store unreachable", err)
	}
	return Healthy("store reachable")
}

// Ping checks store reachability directly.
func (c *StoreChecker) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// WarningOccupancy is the fraction of L1 capacity that triggers
	// degraded status. Value should be between 0 and 1. Default: 0.9
	WarningOccupancy float64
}

// CacheChecker inspects a running tiered cache. Connection state drives
// the status: a degraded cache reports Degraded, a disconnected one
// Unhealthy. A nearly full L1 also degrades the result.
type CacheChecker struct {
	cache  *cache.TieredCache
	config CacheCheckerConfig
}

// NewCacheChecker creates a checker for c.
func NewCacheChecker(c *cache.TieredCache, config CacheCheckerConfig) *CacheChecker {
	if config.WarningOccupancy <= 0 || config.WarningOccupancy >= 1 {
		config.WarningOccupancy = 0.9
	}
	return &CacheChecker{cache: c, config: config}
}

func (c *CacheChecker) Name() string { return "cache" }

// Check maps the cache's connection state and tier stats onto a status.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats := c.cache.Stats()
	cfg := c.cache.Config()

	details := map[string]any{
		"state":              stats.ConnectionState.String(),
		"hits":               stats.Hits,
		"misses":             stats.Misses,
		"hit_ratio":          stats.HitRatio,
		"l1_entries":         stats.EntryCount,
		"l1_max_entries":     cfg.L1MaxEntries,
		"memory_usage_bytes": stats.MemoryUsageBytes,
		"invalidations":      stats.Invalidations,
	}

	switch stats.ConnectionState {
	case cache.StateDisconnected:
		return Unhealthy("remote tier disconnected", ErrCheckFailed).WithDetails(details)
	case cache.StateDegraded:
		return Degraded("serving from memory tier only").WithDetails(details)
	}

	if cfg.L1MaxEntries > 0 {
		occupancy := float64(stats.EntryCount) / float64(cfg.L1MaxEntries)
		if occupancy >= c.config.WarningOccupancy {
			return Degraded(
				fmt.Sprintf("memory tier nearly full: %.0f%%", occupancy*100),
			).WithDetails(details)
		}
	}

	return Healthy("both tiers operational").WithDetails(details)
}
