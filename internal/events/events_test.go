package events

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	var callCount int

	handler := func(event *Event) error {
		received = event
		callCount++
		return nil
	}

	bus.Subscribe("test_event", handler)

	payload := map[string]string{"foo": "bar"}
	require.NoError(t, bus.PublishJSON("test_event", payload))

	assert.Equal(t, 1, callCount)
	assert.Equal(t, "test_event", received.Type)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "bar", decoded["foo"])
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NotPanics(t, func() { bus.Publish(&Event{Type: "unknown"}) })
	assert.NoError(t, bus.PublishJSON("unknown", nil))
}

func TestEventBusNilReceiver(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}

func TestEventBusHandlerErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(&logger)

	var secondCalled bool
	bus.Subscribe(EventItemCreated, func(_ *Event) error { return errors.New("boom") })
	bus.Subscribe(EventItemCreated, func(_ *Event) error { secondCalled = true; return nil })

	require.NoError(t, bus.PublishJSON(EventItemCreated, ItemEventPayload{ItemID: 1}))

	assert.True(t, secondCalled)
	assert.Contains(t, buf.String(), "Event handler failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus(nil)
	seen := map[string]int{}
	bus.SubscribeAll(func(e *Event) error { seen[e.Type]++; return nil })

	for _, eventType := range AllTypes {
		require.NoError(t, bus.PublishJSON(eventType, nil))
	}

	assert.Len(t, seen, len(AllTypes))
	for _, eventType := range AllTypes {
		assert.Equal(t, 1, seen[eventType], eventType)
	}
}

func TestNewJSONEvent(t *testing.T) {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	payload := BookingEventPayload{BookingID: 123, Status: "WAITING", Start: start}
	event, err := NewJSONEvent("type", payload)
	require.NoError(t, err)

	assert.Equal(t, "type", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, int64(123), decoded.BookingID)
	assert.True(t, decoded.Start.Equal(start))
}

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(nil)
	bus.Subscribe(EventCommentAdded, AuditHandler(&logger))

	require.NoError(t, bus.PublishJSON(EventCommentAdded, CommentEventPayload{CommentID: 5, ItemID: 2, AuthorID: 3}))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "comment_added", line["event"])
	assert.Equal(t, "Domain event", line["message"])
	assert.Equal(t, map[string]interface{}{"comment_id": float64(5), "item_id": float64(2), "author_id": float64(3)}, line["payload"])
}
