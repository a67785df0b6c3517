// Package cache provides a two-tier cache for expensive operation results.
//
// It composes a bounded in-process L1 tier (MemoryCache) with a shared
// remote L2 tier (any Store, typically Redis via the redisstore package)
// behind a single TieredCache, with deterministic key generation for
// semantically equivalent requests, size-aware compression on the L2
// boundary, per-operation TTL policies, pattern invalidation across both
// tiers, and preset-driven construction via New.
package cache
