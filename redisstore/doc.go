// Package redisstore provides the Redis-backed L2 store for the tiered
// cache. It maps the cache.Store contract onto go-redis: reads fetch value
// and remaining TTL in one pipeline, pattern scans use cursor-based SCAN,
// and every transport failure surfaces as a cache.InfrastructureError so
// the orchestrator can apply its degradation policy.
package redisstore
