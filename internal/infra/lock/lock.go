package lock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

const (
	DefaultTTL  = 5 * time.Second
	DefaultWait = 2 * time.Second
)

// ErrTimeout is returned when a key stays held past the wait bound.
var ErrTimeout = errors.New("lock: wait timeout")

// Unlock releases every key taken by one Lock call. It is safe to call more
// than once.
type Unlock func()

// Locker serializes critical sections per key across callers.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (Unlock, error)
}

// normalize sorts and dedupes keys so every caller takes them in the same
// order.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// waitContext bounds ctx by wait.
func waitContext(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	if wait <= 0 {
		wait = DefaultWait
	}
	return context.WithTimeout(ctx, wait)
}

// waitErr maps a failure caused by the wait bound to ErrTimeout.
func waitErr(parent context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

func once(fn func()) Unlock {
	var o sync.Once
	return func() { o.Do(fn) }
}
