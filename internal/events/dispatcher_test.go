package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesEverySubscriber(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(nil)
	var calls []string

	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return errors.New("handler failure")
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:t1", "second:t1"}, calls)
}
