package redisstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jonwraymond/tiercache/cache"
)

// Store is the Redis-backed implementation of cache.Store.
//
// Contract:
//   - Concurrency: safe for concurrent use; the client pools connections.
//   - Errors: an absent key is never an error. Transport failures are
//     returned as *cache.InfrastructureError; context cancellation passes
//     through unchanged.
type Store struct {
	client *redis.Client
	prefix string
}

var _ cache.Store = (*Store)(nil)

// New builds a Store from Config. The connection is not probed here; the
// cache factory performs the initial reachability check.
func New(ctx context.Context, cfg Config) (*Store, error) {
	opts, err := cfg.clientOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{
		client: redis.NewClient(opts),
		prefix: cfg.KeyPrefix,
	}, nil
}

// NewFromClient wraps an existing client. The caller keeps ownership of
// the client's lifecycle unless Close is used.
func NewFromClient(client *redis.Client, keyPrefix string) *Store {
	return &Store{client: client, prefix: keyPrefix}
}

// Get fetches the value and its remaining TTL in one round trip. A key
// with no expiry reports a zero remaining duration.
func (s *Store) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, s.wrap("get", err)
	}

	value, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, s.wrap("get", err)
	}

	remaining := ttlCmd.Val()
	if remaining < 0 {
		remaining = 0
	}
	return value, remaining, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return s.wrap("set", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, s.wrap("delete", err)
	}
	return n > 0, nil
}

func (s *Store) DeleteMany(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}
	n, err := s.client.Del(ctx, prefixed...).Result()
	if err != nil {
		return 0, s.wrap("delete", err)
	}
	return n, nil
}

// ScanKeys walks keys matching pattern with cursor-based SCAN, invoking fn
// once per page. Keys are reported without the store's prefix.
func (s *Store) ScanKeys(ctx context.Context, pattern string, batchSize int64, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+pattern, batchSize).Result()
		if err != nil {
			return s.wrap("scan", err)
		}
		if len(keys) > 0 {
			if s.prefix != "" {
				for i, k := range keys {
					keys[i] = strings.TrimPrefix(k, s.prefix)
				}
			}
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// wrap classifies a client error. Context cancellation is the caller's
// doing and passes through untouched.
func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &cache.InfrastructureError{Op: op, Err: err}
}
