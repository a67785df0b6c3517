package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultPreset is used when Options.Preset is empty.
const DefaultPreset = "simple"

const (
	defaultSweepInterval     = time.Minute
	defaultReconnectInterval = 5 * time.Second
)

// Overrides adjusts individual preset values. Nil fields keep the preset's
// value; set fields replace it before validation.
type Overrides struct {
	DefaultTTL                *time.Duration
	MaxTTL                    *time.Duration
	L1MaxEntries              *int
	CompressionThresholdBytes *int
	CompressionLevel          *int
	MaxConnections            *int
	ConnectionTimeout         *time.Duration
	SocketTimeout             *time.Duration

	TextSizeTiers *TextSizeTiers
	OperationTTLs map[string]time.Duration
	HashAlgorithm *string
}

// configJSON is the raw-config overlay accepted by Options.CustomJSON.
// Durations are seconds. Unknown fields are rejected.
type configJSON struct {
	DefaultTTLSeconds         *int64           `json:"default_ttl_seconds"`
	MaxTTLSeconds             *int64           `json:"max_ttl_seconds"`
	L1MaxEntries              *int             `json:"l1_max_entries"`
	CompressionThresholdBytes *int             `json:"compression_threshold_bytes"`
	CompressionLevel          *int             `json:"compression_level"`
	MaxConnections            *int             `json:"max_connections"`
	ConnectionTimeoutSeconds  *int64           `json:"connection_timeout_seconds"`
	SocketTimeoutSeconds      *int64           `json:"socket_timeout_seconds"`
	OperationTTLSeconds       map[string]int64 `json:"operation_ttl_seconds"`
	HashAlgorithm             *string          `json:"hash_algorithm"`
}

// Options configures New. Preset names the baseline; Overrides and then
// CustomJSON refine it, raw JSON winning over typed overrides.
type Options struct {
	// Preset names the configuration baseline. Empty means DefaultPreset.
	Preset string

	// Overrides replaces individual preset values.
	Overrides *Overrides

	// CustomJSON is an optional raw-config overlay applied last.
	CustomJSON []byte

	// Store is the L2 backend. Required; use ResolveConfig to obtain the
	// connection settings a store implementation should be built with.
	Store Store

	// FailOnConnectionError selects strict mode: store failures propagate
	// to callers and the cache goes Disconnected. The default (graceful)
	// degrades to L1-only service instead.
	FailOnConnectionError bool

	// Hooks observe completed operations; BeforeHooks fire before them.
	Hooks       []Hook
	BeforeHooks []BeforeHook

	// SweepInterval is the L1 expiry sweep period. Zero means one minute;
	// negative disables the sweeper.
	SweepInterval time.Duration

	// ReconnectInterval is the degraded-mode ping period. Zero means five
	// seconds. Ignored in strict mode.
	ReconnectInterval time.Duration
}

// ResolvedConfig is the fully resolved, validated configuration for one
// cache instance. It is a value snapshot; mutating it after construction
// has no effect on the cache.
type ResolvedConfig struct {
	Preset                    string
	DefaultTTL                time.Duration
	MaxTTL                    time.Duration
	L1MaxEntries              int
	CompressionThresholdBytes int
	CompressionLevel          int
	MaxConnections            int
	ConnectionTimeout         time.Duration
	SocketTimeout             time.Duration
	TextSizeTiers             TextSizeTiers
	OperationTTLs             map[string]time.Duration
	HashAlgorithm             string
	FailOnConnectionError     bool
}

// ResolveConfig resolves Options into the effective configuration without
// constructing a cache. Callers use it to build the L2 store first, then
// pass both to New. All validation failures are reported together.
func ResolveConfig(opts Options) (ResolvedConfig, error) {
	name := opts.Preset
	if name == "" {
		name = DefaultPreset
	}
	p, err := PresetByName(name)
	if err != nil {
		return ResolvedConfig{}, err
	}

	cfg := ResolvedConfig{
		Preset:                    p.Name,
		DefaultTTL:                p.DefaultTTL,
		L1MaxEntries:              p.L1MaxEntries,
		CompressionThresholdBytes: p.CompressionThresholdBytes,
		CompressionLevel:          p.CompressionLevel,
		MaxConnections:            p.MaxConnections,
		ConnectionTimeout:         p.ConnectionTimeout,
		SocketTimeout:             p.SocketTimeout,
		TextSizeTiers:             DefaultTextSizeTiers(),
		HashAlgorithm:             DefaultHashAlgorithm,
		FailOnConnectionError:     opts.FailOnConnectionError,
	}
	if p.AI != nil {
		cfg.TextSizeTiers = p.AI.TextSizeTiers
		cfg.HashAlgorithm = p.AI.HashAlgorithm
		cfg.OperationTTLs = make(map[string]time.Duration, len(p.AI.OperationTTLs))
		for k, v := range p.AI.OperationTTLs {
			cfg.OperationTTLs[k] = v
		}
	}

	applyOverrides(&cfg, opts.Overrides)
	if err := applyJSON(&cfg, opts.CustomJSON); err != nil {
		return ResolvedConfig{}, err
	}

	if err := cfg.validate(); err != nil {
		return ResolvedConfig{}, err
	}
	return cfg, nil
}

func applyOverrides(cfg *ResolvedConfig, o *Overrides) {
	if o == nil {
		return
	}
	if o.DefaultTTL != nil {
		cfg.DefaultTTL = *o.DefaultTTL
	}
	if o.MaxTTL != nil {
		cfg.MaxTTL = *o.MaxTTL
	}
	if o.L1MaxEntries != nil {
		cfg.L1MaxEntries = *o.L1MaxEntries
	}
	if o.CompressionThresholdBytes != nil {
		cfg.CompressionThresholdBytes = *o.CompressionThresholdBytes
	}
	if o.CompressionLevel != nil {
		cfg.CompressionLevel = *o.CompressionLevel
	}
	if o.MaxConnections != nil {
		cfg.MaxConnections = *o.MaxConnections
	}
	if o.ConnectionTimeout != nil {
		cfg.ConnectionTimeout = *o.ConnectionTimeout
	}
	if o.SocketTimeout != nil {
		cfg.SocketTimeout = *o.SocketTimeout
	}
	if o.TextSizeTiers != nil {
		cfg.TextSizeTiers = *o.TextSizeTiers
	}
	if o.HashAlgorithm != nil {
		cfg.HashAlgorithm = *o.HashAlgorithm
	}
	if len(o.OperationTTLs) > 0 {
		if cfg.OperationTTLs == nil {
			cfg.OperationTTLs = make(map[string]time.Duration, len(o.OperationTTLs))
		}
		for k, v := range o.OperationTTLs {
			cfg.OperationTTLs[k] = v
		}
	}
}

func applyJSON(cfg *ResolvedConfig, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var j configJSON
	if err := dec.Decode(&j); err != nil {
		ve := &ValidationError{}
		ve.add("custom config: %v", err)
		return ve
	}
	if j.DefaultTTLSeconds != nil {
		cfg.DefaultTTL = time.Duration(*j.DefaultTTLSeconds) * time.Second
	}
	if j.MaxTTLSeconds != nil {
		cfg.MaxTTL = time.Duration(*j.MaxTTLSeconds) * time.Second
	}
	if j.L1MaxEntries != nil {
		cfg.L1MaxEntries = *j.L1MaxEntries
	}
	if j.CompressionThresholdBytes != nil {
		cfg.CompressionThresholdBytes = *j.CompressionThresholdBytes
	}
	if j.CompressionLevel != nil {
		cfg.CompressionLevel = *j.CompressionLevel
	}
	if j.MaxConnections != nil {
		cfg.MaxConnections = *j.MaxConnections
	}
	if j.ConnectionTimeoutSeconds != nil {
		cfg.ConnectionTimeout = time.Duration(*j.ConnectionTimeoutSeconds) * time.Second
	}
	if j.SocketTimeoutSeconds != nil {
		cfg.SocketTimeout = time.Duration(*j.SocketTimeoutSeconds) * time.Second
	}
	if j.HashAlgorithm != nil {
		cfg.HashAlgorithm = *j.HashAlgorithm
	}
	if len(j.OperationTTLSeconds) > 0 {
		if cfg.OperationTTLs == nil {
			cfg.OperationTTLs = make(map[string]time.Duration, len(j.OperationTTLSeconds))
		}
		for k, v := range j.OperationTTLSeconds {
			cfg.OperationTTLs[k] = time.Duration(v) * time.Second
		}
	}
	return nil
}

// validate checks every field and reports all violations together rather
// than stopping at the first.
func (c ResolvedConfig) validate() error {
	ve := &ValidationError{}

	if c.DefaultTTL <= 0 {
		ve.add("default ttl must be positive, got %s", c.DefaultTTL)
	}
	if c.MaxTTL < 0 {
		ve.add("max ttl must not be negative, got %s", c.MaxTTL)
	}
	if c.MaxTTL > 0 && c.DefaultTTL > c.MaxTTL {
		ve.add("default ttl %s exceeds max ttl %s", c.DefaultTTL, c.MaxTTL)
	}
	if c.L1MaxEntries < 0 {
		ve.add("l1 max entries must not be negative, got %d", c.L1MaxEntries)
	}
	if c.CompressionThresholdBytes < 0 {
		ve.add("compression threshold must not be negative, got %d", c.CompressionThresholdBytes)
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 9 {
		ve.add("compression level must be between 1 and 9, got %d", c.CompressionLevel)
	}
	if c.MaxConnections <= 0 {
		ve.add("max connections must be positive, got %d", c.MaxConnections)
	}
	if c.ConnectionTimeout <= 0 {
		ve.add("connection timeout must be positive, got %s", c.ConnectionTimeout)
	}
	if c.SocketTimeout <= 0 {
		ve.add("socket timeout must be positive, got %s", c.SocketTimeout)
	}
	if _, err := hashFactory(c.HashAlgorithm); err != nil {
		ve.add("hash algorithm: %v", err)
	}
	if c.TextSizeTiers.SmallMaxBytes <= 0 {
		ve.add("small tier bound must be positive, got %d", c.TextSizeTiers.SmallMaxBytes)
	}
	if c.TextSizeTiers.MediumMaxBytes < c.TextSizeTiers.SmallMaxBytes {
		ve.add("medium tier bound %d is below small tier bound %d",
			c.TextSizeTiers.MediumMaxBytes, c.TextSizeTiers.SmallMaxBytes)
	}
	if c.TextSizeTiers.TruncateBytes <= 0 {
		ve.add("truncate length must be positive, got %d", c.TextSizeTiers.TruncateBytes)
	}
	for op, ttl := range c.OperationTTLs {
		if ttl <= 0 {
			ve.add("operation %q: ttl must be positive, got %s", op, ttl)
		}
	}

	return ve.errOrNil()
}

// New builds a TieredCache from Options. Configuration resolves preset,
// then Overrides, then CustomJSON; the result is validated as a whole. The
// store is probed once during construction: in strict mode a failed probe
// fails construction, in graceful mode the cache starts Degraded and the
// reconnect prober takes over.
func New(ctx context.Context, opts Options) (*TieredCache, error) {
	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}

	keyer, err := NewTieredKeyer(cfg.TextSizeTiers, cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	codec, err := NewCodec(cfg.CompressionThresholdBytes, cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}

	policy := Policy{
		DefaultTTL:    cfg.DefaultTTL,
		MaxTTL:        cfg.MaxTTL,
		OperationTTLs: cfg.OperationTTLs,
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	reconnect := opts.ReconnectInterval
	if reconnect == 0 {
		reconnect = defaultReconnectInterval
	}

	t := &TieredCache{
		l1:             NewMemoryCache(cfg.L1MaxEntries),
		store:          opts.Store,
		codec:          codec,
		keyer:          keyer,
		policy:         policy,
		resolved:       cfg,
		failOnConnErr:  cfg.FailOnConnectionError,
		hooks:          append([]Hook(nil), opts.Hooks...),
		before:         append([]BeforeHook(nil), opts.BeforeHooks...),
		reconnectEvery: reconnect,
		stop:           make(chan struct{}),
	}
	t.state.Store(int32(StateConnected))

	probeCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	err = t.store.Ping(probeCtx)
	cancel()
	if err != nil {
		ie := &InfrastructureError{Op: "ping", Err: err}
		if cfg.FailOnConnectionError {
			return nil, fmt.Errorf("cache: store unreachable: %w", ie)
		}
		t.connMu.Lock()
		t.connErr = ie
		t.connMu.Unlock()
		t.state.Store(int32(StateDegraded))
	}

	sweep := opts.SweepInterval
	if sweep == 0 {
		sweep = defaultSweepInterval
	}
	if sweep > 0 {
		t.l1.StartSweeper(sweep)
	}
	t.startReconnectProbe()

	return t, nil
}

// Config returns the resolved configuration the cache was built with.
func (t *TieredCache) Config() ResolvedConfig {
	cfg := t.resolved
	if cfg.OperationTTLs != nil {
		m := make(map[string]time.Duration, len(cfg.OperationTTLs))
		for k, v := range cfg.OperationTTLs {
			m[k] = v
		}
		cfg.OperationTTLs = m
	}
	return cfg
}
