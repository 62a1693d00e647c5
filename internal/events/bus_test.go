package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mandi-labs/backend-mandi/internal/events"
)

type memStore struct {
	inserted []events.Event
	fail     error
}

func (m *memStore) InsertEvent(_ context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	if m.fail != nil {
		return events.Event{}, m.fail
	}
	ev := events.Event{ID: "ev-1", Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}
	m.inserted = append(m.inserted, ev)
	return ev, nil
}

type recordingNotifier struct {
	seen []events.Event
	fail error
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.Event) error {
	n.seen = append(n.seen, ev)
	return n.fail
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), events.TopicOfferCreated, "offer-1", map[string]any{"title": "Diwali deal"})
	require.NoError(t, err)
	require.Equal(t, events.TopicOfferCreated, ev.Topic)
	require.Len(t, store.inserted, 1)
	require.Len(t, notifier.seen, 1)
	require.JSONEq(t, `{"title":"Diwali deal"}`, string(ev.Payload))
}

func TestEmitNotifierFailureDoesNotDropEvent(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	notifier := &recordingNotifier{fail: errors.New("boom")}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), events.TopicSettingsActivated, "settings-1", nil)
	require.Error(t, err)
	require.Equal(t, "settings-1", ev.AggregateID)
	require.Len(t, store.inserted, 1)
}

func TestEmitRequiresTopicAndAggregate(t *testing.T) {
	t.Parallel()

	bus := &events.Bus{Store: &memStore{}}
	_, err := bus.Emit(context.Background(), " ", "x", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOfferDeleted, "", nil)
	require.Error(t, err)
}

func TestEmitRejectsInvalidRawPayload(t *testing.T) {
	t.Parallel()

	bus := &events.Bus{Store: &memStore{}}
	_, err := bus.Emit(context.Background(), events.TopicOfferUpdated, "offer-2", []byte("{nope"))
	require.Error(t, err)
}
