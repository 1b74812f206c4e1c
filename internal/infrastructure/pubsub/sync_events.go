package pubsub

import (
	"context"
	"fmt"
	"sync"

	"retentionos/internal/domain"
	"retentionos/internal/ports"

	"github.com/rs/zerolog"
)

// Subscription receives sync events for one owner until its context ends
type Subscription struct {
	ID      string
	OwnerID string
	Events  chan domain.SyncEvent
	ctx     context.Context
	cancel  context.CancelFunc
}

// Close ends the subscription
func (s *Subscription) Close() {
	s.cancel()
}

// SyncEventBus fans sync progress out to in-process listeners
type SyncEventBus struct {
	mu       sync.RWMutex
	channels map[string]*Subscription
	logger   zerolog.Logger
	nextID   int64
}

// NewSyncEventBus creates an empty bus
func NewSyncEventBus(logger zerolog.Logger) *SyncEventBus {
	return &SyncEventBus{
		channels: make(map[string]*Subscription),
		logger:   logger,
	}
}

var _ ports.SyncEventPublisher = (*SyncEventBus)(nil)

// Subscribe registers a listener for ownerID's events. It is removed when ctx is done.
func (b *SyncEventBus) Subscribe(ctx context.Context, ownerID string) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.nextID++
	sub := &Subscription{
		ID:      fmt.Sprintf("sub-%d", b.nextID),
		OwnerID: ownerID,
		Events:  make(chan domain.SyncEvent, 16),
		ctx:     subCtx,
		cancel:  cancel,
	}
	b.channels[sub.ID] = sub
	b.mu.Unlock()

	go func() {
		<-subCtx.Done()
		b.unsubscribe(sub.ID)
	}()

	return sub
}

func (b *SyncEventBus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[id]
	if !ok {
		return
	}
	close(sub.Events)
	delete(b.channels, id)
}

// Publish delivers event to the owner's listeners without blocking.
// A listener with a full buffer misses the event.
func (b *SyncEventBus) Publish(event domain.SyncEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.channels {
		if sub.OwnerID != event.OwnerID {
			continue
		}
		select {
		case sub.Events <- event:
		case <-sub.ctx.Done():
		default:
			b.logger.Warn().
				Str("subscription", sub.ID).
				Str("sync_id", event.SyncID).
				Msg("Subscriber buffer full, dropping sync event")
		}
	}
}

// Close ends every subscription so open streams can return
func (b *SyncEventBus) Close() {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.channels))
	for _, sub := range b.channels {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.cancel()
		b.unsubscribe(sub.ID)
	}
}

// Subscribers reports the number of live subscriptions
func (b *SyncEventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels)
}
