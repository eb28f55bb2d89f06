package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-octagon/pkg/channels/gochannel"
	"github.com/dukex/operion-octagon/pkg/events"
	"github.com/dukex/operion-octagon/pkg/log"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub, log.Discard())
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)
	received := make(chan *events.ExecutionRequested, 1)

	require.NoError(t, bus.Handle(events.ExecutionRequestedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ExecutionRequested)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "octagonAgents", events.ExecutionRequested{
		BaseEvent:  events.NewBaseEvent(events.ExecutionRequestedEvent),
		NodeType:   "octagonAgents",
		Parameters: map[string]any{"query": "q"},
		Items:      []models.Item{{JSON: map[string]any{"n": 1}}},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "octagonAgents", event.NodeType)
		assert.Equal(t, "q", event.Parameters["query"])
		require.Len(t, event.Items, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)
	completed := make(chan *events.ExecutionCompleted, 1)

	require.NoError(t, bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.ExecutionCompleted)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "k", events.ExecutionRequested{
		BaseEvent: events.NewBaseEvent(events.ExecutionRequestedEvent),
	}))
	require.NoError(t, bus.Publish(ctx, "k", events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent),
		ExecutionID: "exec-1",
		Status:      models.ExecutionStatusCompleted,
	}))

	select {
	case event := <-completed:
		assert.Equal(t, "exec-1", event.ExecutionID)
	case <-time.After(5 * time.Second):
		t.Fatal("completion event was not delivered")
	}
}

func TestWatermillEventBus_RedeliversOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t)
	attempts := make(chan int, 3)
	count := 0

	require.NoError(t, bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, _ any) error {
		count++
		attempts <- count

		if count == 1 {
			return errors.New("temporary failure")
		}

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "k", events.ExecutionCompleted{
		BaseEvent: events.NewBaseEvent(events.ExecutionCompletedEvent),
	}))

	for want := 1; want <= 2; want++ {
		select {
		case got := <-attempts:
			assert.Equal(t, want, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("attempt %d was not delivered", want)
		}
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEmpty(t, bus.GenerateID())
	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
