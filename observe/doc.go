// Package observe provides observability primitives for the cache subsystem.
//
// It is a pure instrumentation library: no caching, no transport, no I/O
// beyond exporter setup. Consumers build an Observer, derive an
// Instrumentation from it, and register its hook on the cache.
package observe
