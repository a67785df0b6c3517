package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jonwraymond/tiercache/cache"
	"github.com/jonwraymond/tiercache/secret"
)

// Config describes the Redis connection. URL takes precedence over the
// discrete fields when both are set. Password and URL may hold secret
// references or ${ENV} placeholders; they are resolved through Secrets
// before a client is built.
type Config struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Address is host:port, used when URL is empty.
	Address  string
	Password string
	DB       int

	// KeyPrefix namespaces every key this store touches.
	KeyPrefix string

	MaxConnections int
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration

	// Secrets resolves secretref and ${ENV} values in URL and Password.
	// Nil means values are used verbatim.
	Secrets *secret.Resolver
}

// FromResolved builds a Config from the cache's resolved settings plus the
// connection target.
func FromResolved(rc cache.ResolvedConfig, address, password string) Config {
	return Config{
		Address:        address,
		Password:       password,
		MaxConnections: rc.MaxConnections,
		ConnectTimeout: rc.ConnectionTimeout,
		SocketTimeout:  rc.SocketTimeout,
	}
}

// clientOptions resolves secrets and translates Config into go-redis
// options.
func (c Config) clientOptions(ctx context.Context) (*redis.Options, error) {
	resolve := func(v string) (string, error) {
		if v == "" || c.Secrets == nil {
			return v, nil
		}
		return c.Secrets.ResolveValue(ctx, v)
	}

	if c.URL != "" {
		u, err := resolve(c.URL)
		if err != nil {
			return nil, fmt.Errorf("resolve redis url: %w", err)
		}
		opts, err := redis.ParseURL(u)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		c.applyTimeouts(opts)
		return opts, nil
	}

	if c.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	pw, err := resolve(c.Password)
	if err != nil {
		return nil, fmt.Errorf("resolve redis password: %w", err)
	}

	opts := &redis.Options{
		Addr:     c.Address,
		Password: pw,
		DB:       c.DB,
	}
	c.applyTimeouts(opts)
	return opts, nil
}

func (c Config) applyTimeouts(opts *redis.Options) {
	if c.MaxConnections > 0 {
		opts.PoolSize = c.MaxConnections
	}
	if c.ConnectTimeout > 0 {
		opts.DialTimeout = c.ConnectTimeout
	}
	if c.SocketTimeout > 0 {
		opts.ReadTimeout = c.SocketTimeout
		opts.WriteTimeout = c.SocketTimeout
	}
}
