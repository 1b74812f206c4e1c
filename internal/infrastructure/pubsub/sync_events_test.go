package pubsub

import (
	"context"
	"testing"
	"time"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEventBus_DeliversToOwner(t *testing.T) {
	bus := NewSyncEventBus(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine := bus.Subscribe(ctx, "owner-1")
	theirs := bus.Subscribe(ctx, "owner-2")

	bus.Publish(domain.SyncEvent{SyncID: "s1", OwnerID: "owner-1", Stage: domain.SyncStageStarted})

	select {
	case ev := <-mine.Events:
		assert.Equal(t, "s1", ev.SyncID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-theirs.Events:
		t.Fatalf("unexpected event for other owner: %+v", ev)
	default:
	}
}

func TestSyncEventBus_Unsubscribe(t *testing.T) {
	bus := NewSyncEventBus(zerolog.Nop())

	sub := bus.Subscribe(context.Background(), "owner-1")
	require.Equal(t, 1, bus.Subscribers())

	sub.Close()

	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-sub.Events
	assert.False(t, open)

	// publishing after close must not panic
	bus.Publish(domain.SyncEvent{OwnerID: "owner-1"})
}

func TestSyncEventBus_CloseEndsAllSubscriptions(t *testing.T) {
	bus := NewSyncEventBus(zerolog.Nop())
	a := bus.Subscribe(context.Background(), "owner-1")
	b := bus.Subscribe(context.Background(), "owner-2")

	bus.Close()

	assert.Equal(t, 0, bus.Subscribers())
	_, open := <-a.Events
	assert.False(t, open)
	_, open = <-b.Events
	assert.False(t, open)
}
