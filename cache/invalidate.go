package cache

import (
	"context"
	"time"
)

// scanBatchSize bounds how many keys one SCAN iteration may return. The
// full keyspace is never held in memory at once.
const scanBatchSize = 100

// InvalidatePattern removes every key matching the glob pattern from both
// tiers and returns the number of distinct keys removed. The L2 keyspace
// is walked cursor-style in bounded batches; the L1 side runs on a key
// snapshot so unrelated Get/Set traffic is never serialized behind the
// scan.
func (t *TieredCache) InvalidatePattern(ctx context.Context, pattern string) (count int, err error) {
	start := time.Now()
	t.emitBefore(OpInvalidate, pattern)
	defer func() { t.emit(OpInvalidate, pattern, start, false, "", err) }()

	if t.isClosed() {
		return 0, ErrClosed
	}
	if pattern == "" {
		return 0, ErrInvalidKey
	}

	// Count distinct keys, not the naive sum: a key cached in both tiers
	// is one invalidation.
	removed := make(map[string]struct{})

	if t.State() == StateConnected {
		scanErr := t.store.ScanKeys(ctx, pattern, scanBatchSize, func(keys []string) error {
			n, err := t.store.DeleteMany(ctx, keys)
			if err != nil {
				return err
			}
			if n > 0 {
				for _, k := range keys {
					removed[k] = struct{}{}
				}
			}
			// Drop the same keys from L1 so no tier resurrects them.
			for _, k := range keys {
				t.l1.remove(k)
			}
			return nil
		})
		if scanErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return len(removed), ctxErr
			}
			if err := t.storeFailed(ctx, scanErr); err != nil {
				return len(removed), err
			}
		}
	} else if t.State() == StateDisconnected {
		return 0, t.lastConnErr()
	}

	for _, k := range t.l1.DeleteMatch(pattern) {
		removed[k] = struct{}{}
	}

	count = len(removed)
	t.invalidations.Add(uint64(count))
	return count, nil
}
