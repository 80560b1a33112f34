package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process keyed mutex. It only serializes callers that
// share the same instance.
type LocalLocker struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

var _ Locker = (*LocalLocker)(nil)

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		wait:  wait,
		locks: make(map[string]*localEntry),
	}
}

func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (Unlock, error) {
	keys = normalize(keys)

	wctx, cancel := waitContext(ctx, l.wait)
	defer cancel()

	held := make([]*localEntry, 0, len(keys))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(keys[i], held[i])
		}
	}

	for _, k := range keys {
		e, err := l.acquire(wctx, k)
		if err != nil {
			releaseAll()
			return nil, waitErr(ctx, err)
		}
		held = append(held, e)
	}

	return once(releaseAll), nil
}

func (l *LocalLocker) acquire(ctx context.Context, key string) (*localEntry, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return e, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) release(key string, e *localEntry) {
	<-e.ch
	l.drop(key, e)
}

func (l *LocalLocker) drop(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
