package cache

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sort"
	"strings"
)

// Keyer generates deterministic cache keys from an operation, its payload,
// and its options.
//
// Contract:
//   - Determinism: identical inputs produce identical keys regardless of
//     map iteration order.
//   - Purity: no side effects, no I/O.
//   - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key for an operation invocation.
	Key(operation, payload string, options map[string]any) (string, error)
}

// TextSizeTiers configures size-tiered payload handling in TieredKeyer.
// Tier comparisons are inclusive of each upper bound: a payload exactly at
// a threshold belongs to the lower tier.
type TextSizeTiers struct {
	// SmallMaxBytes is the largest payload embedded literally in the key.
	SmallMaxBytes int

	// MediumMaxBytes is the largest payload represented as a truncated
	// prefix plus a short digest. Anything larger is replaced by a full
	// digest so key length stays bounded.
	MediumMaxBytes int

	// TruncateBytes is the prefix length kept for medium payloads.
	TruncateBytes int
}

// DefaultTextSizeTiers returns the default tier bounds.
func DefaultTextSizeTiers() TextSizeTiers {
	return TextSizeTiers{
		SmallMaxBytes:  500,
		MediumMaxBytes: 5000,
		TruncateBytes:  100,
	}
}

// DefaultHashAlgorithm is the digest used for payload and option hashing.
const DefaultHashAlgorithm = "sha256"

// TieredKeyer generates keys of the form
//
//	<operation>|<payload_repr>|opts:<digest>
//
// where payload_repr depends on payload size: small payloads are embedded
// literally after sanitization, medium payloads are truncated and digested,
// and large payloads are replaced entirely by a cryptographic digest so
// large texts never leak into key listings.
type TieredKeyer struct {
	tiers   TextSizeTiers
	newHash func() hash.Hash
}

// NewTieredKeyer creates a keyer with the given tier bounds and digest
// algorithm ("sha256" or "sha1"). Zero tier fields fall back to defaults.
func NewTieredKeyer(tiers TextSizeTiers, algorithm string) (*TieredKeyer, error) {
	def := DefaultTextSizeTiers()
	if tiers.SmallMaxBytes <= 0 {
		tiers.SmallMaxBytes = def.SmallMaxBytes
	}
	if tiers.MediumMaxBytes <= 0 {
		tiers.MediumMaxBytes = def.MediumMaxBytes
	}
	if tiers.TruncateBytes <= 0 {
		tiers.TruncateBytes = def.TruncateBytes
	}
	if tiers.MediumMaxBytes < tiers.SmallMaxBytes {
		ve := &ValidationError{}
		ve.add("text_size_tiers: medium bound %d is below small bound %d",
			tiers.MediumMaxBytes, tiers.SmallMaxBytes)
		return nil, ve
	}

	newHash, err := hashFactory(algorithm)
	if err != nil {
		return nil, err
	}

	return &TieredKeyer{tiers: tiers, newHash: newHash}, nil
}

func hashFactory(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case "", DefaultHashAlgorithm:
		return sha256.New, nil
	case "sha1":
		return sha1.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHash, algorithm)
	}
}

// Key generates a deterministic cache key. Two calls with the same
// operation, same payload, and options differing only in insertion order
// produce the identical key.
func (k *TieredKeyer) Key(operation, payload string, options map[string]any) (string, error) {
	if strings.TrimSpace(operation) == "" {
		return "", ErrInvalidKey
	}

	repr := k.payloadRepr(payload)

	optDigest, err := k.optionsDigest(options)
	if err != nil {
		return "", fmt.Errorf("cache: failed to digest options: %w", err)
	}

	key := operation + "|" + repr + "|opts:" + optDigest
	if len(key) > MaxKeyLength {
		// Custom tier bounds or a long operation name can push a literal
		// embedding past the key cap. Fall back to the digest
		// representation rather than producing an unstorable key.
		key = operation + "|hash:" + k.digest(payload) + "|opts:" + optDigest
	}
	return key, nil
}

// payloadRepr picks the payload representation by size tier. Boundaries
// are inclusive: len == SmallMaxBytes is still small.
func (k *TieredKeyer) payloadRepr(payload string) string {
	n := len(payload)
	switch {
	case n <= k.tiers.SmallMaxBytes:
		return sanitize(payload)
	case n <= k.tiers.MediumMaxBytes:
		cut := k.tiers.TruncateBytes
		if cut > n {
			cut = n
		}
		prefix := sanitize(payload[:cut])
		return prefix + ":" + k.digest(payload)[:16]
	default:
		return "hash:" + k.digest(payload)
	}
}

func (k *TieredKeyer) digest(s string) string {
	h := k.newHash()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// optionsDigest canonicalizes options (keys sorted, values serialized
// deterministically) and digests the result. nil and empty maps are
// equivalent.
func (k *TieredKeyer) optionsDigest(options map[string]any) (string, error) {
	if len(options) == 0 {
		return "-", nil
	}
	canonical, err := canonicalizeMap(options)
	if err != nil {
		return "", err
	}
	h := k.newHash()
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// sanitize strips characters unsafe for key strings: anything outside
// letters, digits, and a small punctuation set is removed.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == '=' || r == '@':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalize produces a deterministic JSON representation of v.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure TieredKeyer implements Keyer
var _ Keyer = (*TieredKeyer)(nil)
