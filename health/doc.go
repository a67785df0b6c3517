// Package health reports the operational state of the cache subsystem.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. The
// package ships checkers for the two cache tiers: StoreChecker pings the
// remote store, CacheChecker inspects a running tiered cache and maps its
// connection state and L1 occupancy onto a status.
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single composite
// check:
//
//	agg := health.NewAggregator(5 * time.Second)
//	agg.Register("redis", health.NewStoreChecker("redis", store, time.Second))
//	agg.Register("cache", health.NewCacheChecker(c, health.CacheCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common probe patterns:
//
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler(agg))
//	http.Handle("/health", health.DetailedHandler(agg))
package health
