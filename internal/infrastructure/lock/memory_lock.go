package lock

import (
	"context"
	"fmt"
	"sync"

	"retentionos/internal/ports"
)

// MemoryLocker serializes work per key inside one process.
// Used when Redis is not configured.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]chan struct{})}
}

var _ ports.SyncLocker = (*MemoryLocker)(nil)

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		waitCh, busy := l.held[key]
		if !busy {
			ch := make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-waitCh:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ports.ErrLockNotAcquired, key, ctx.Err())
		}
	}
}
