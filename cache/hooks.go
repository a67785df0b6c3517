package cache

import "time"

// Op identifies a cache operation for hooks.
type Op string

const (
	OpGet        Op = "get"
	OpSet        Op = "set"
	OpDelete     Op = "delete"
	OpInvalidate Op = "invalidate"
)

// Event describes one completed cache operation. Hooks receive it after
// every Get/Set/Delete/InvalidatePattern call; the cache itself performs
// no aggregation or export.
type Event struct {
	Op       Op
	Key      string
	Duration time.Duration
	Hit      bool
	Tier     string // "l1", "l2", or "" when no tier served the call
	Err      error
}

// ErrKind classifies the event's error, KindNone on success.
func (e Event) ErrKind() ErrKind { return Kind(e.Err) }

// Hook observes completed operations. Hooks are invoked synchronously and
// must be fast and panic-free; they run on the caller's goroutine.
type Hook func(Event)

// BeforeHook observes an operation about to run.
type BeforeHook func(op Op, key string)

func (t *TieredCache) emit(op Op, key string, start time.Time, hit bool, tier string, err error) {
	if len(t.hooks) == 0 {
		return
	}
	ev := Event{
		Op:       op,
		Key:      key,
		Duration: time.Since(start),
		Hit:      hit,
		Tier:     tier,
		Err:      err,
	}
	for _, h := range t.hooks {
		h(ev)
	}
}

func (t *TieredCache) emitBefore(op Op, key string) {
	for _, h := range t.before {
		h(op, key)
	}
}
