package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.events = append(n.events, ev)
	return n.err
}

func TestEmitFansOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	bus := &Bus{Notifiers: []Notifier{first, second}}

	ev, err := bus.Emit(context.Background(), TopicItemAdded, "cart-1", "entry-1", map[string]any{"qty": 2})
	require.NoError(t, err)
	require.Equal(t, TopicItemAdded, ev.Topic)
	require.JSONEq(t, `{"qty":2}`, string(ev.Payload))
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingNotifier{err: boom}
	ok := &recordingNotifier{}
	bus := &Bus{Notifiers: []Notifier{failing, ok}}

	_, err := bus.Emit(context.Background(), TopicCartCleared, "cart-1", "", nil)
	require.ErrorIs(t, err, boom)
	// The failing notifier must not block the others.
	require.Len(t, ok.events, 1)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := &Bus{}
	_, err := bus.Emit(context.Background(), "", "cart-1", "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), TopicItemAdded, "", "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), TopicItemAdded, "cart-1", "", []byte("not json"))
	require.Error(t, err)
}
