package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	ctx := context.Background()

	var delivered []Event
	dispatcher.Subscribe(EventTicketTransition, func(ctx context.Context, event Event) error {
		delivered = append(delivered, event)
		return nil
	})

	require.NoError(t, dispatcher.Publish(ctx, Event{ID: "e-1", Type: EventTicketTransition}))
	require.NoError(t, dispatcher.Publish(ctx, Event{ID: "e-2", Type: "unrelated"}))

	require.Len(t, delivered, 1)
	assert.Equal(t, "e-1", delivered[0].ID)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	ctx := context.Background()

	var secondCalled bool
	dispatcher.Subscribe(EventTicketTransition, func(ctx context.Context, event Event) error {
		return errors.New("handler exploded")
	})
	dispatcher.Subscribe(EventTicketTransition, func(ctx context.Context, event Event) error {
		secondCalled = true
		return nil
	})

	assert.NoError(t, dispatcher.Publish(ctx, Event{ID: "e-1", Type: EventTicketTransition}))
	assert.True(t, secondCalled, "a failing handler must not block the rest")
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{ID: "e-1", Type: EventTicketTransition}))
}
