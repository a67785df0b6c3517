// Package secret resolves credentials referenced from cache configuration.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:REDIS_PASSWORD
//   - Inline use:  redis://:secretref:file:/run/secrets/redis@localhost:6379
//
// The Redis store uses a Resolver to turn configured passwords and URLs
// into their live values without ever logging them.
package secret
