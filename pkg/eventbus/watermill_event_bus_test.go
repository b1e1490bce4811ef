package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/flowboard/flowboard/pkg/channels/gochannel"
	"github.com/flowboard/flowboard/pkg/eventbus"
	"github.com/flowboard/flowboard/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	received := make(chan *events.WorkflowSaved, 1)

	require.NoError(t, bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event any) error {
		saved, ok := event.(*events.WorkflowSaved)
		assert.True(t, ok)

		received <- saved

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.WorkflowSaved{
		BaseEvent: events.NewBaseEvent(events.WorkflowSavedEvent, "wf-1"),
		Name:      "Employee Onboarding",
		NodeCount: 6,
		EdgeCount: 5,
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "wf-1", got.WorkflowID)
		assert.Equal(t, 6, got.NodeCount)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledTypesAreDropped(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	deleted := make(chan string, 1)

	require.NoError(t, bus.Handle(events.WorkflowDeletedEvent, func(_ context.Context, event any) error {
		deleted <- event.(*events.WorkflowDeleted).WorkflowID

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.WorkflowEdited{
		BaseEvent: events.NewBaseEvent(events.WorkflowEditedEvent, "wf-1"),
		Edit:      "nodeMoved",
	}))
	require.NoError(t, bus.Publish(ctx, "wf-2", events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-2"),
	}))

	select {
	case id := <-deleted:
		assert.Equal(t, "wf-2", id)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
