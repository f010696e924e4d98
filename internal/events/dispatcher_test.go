package events

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/room-booking/internal/domain"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventBookingCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventBookingCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventBookingDeleted, func(context.Context, Event) error {
		calls = append(calls, "other type")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventBookingCreated})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventBookingUpdated}), "no subscribers")
}

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSinkForwardsBookingEvents(t *testing.T) {
	writer := &recordingWriter{}
	sink := NewKafkaSink(writer)
	d := NewInMemoryDispatcher()
	sink.Subscribe(d)

	booking := &domain.Booking{ID: 7, RoomID: 2, UserID: 3, Date: "2024-07-11", Slot: domain.SlotAfternoon, Status: domain.StatusPending}
	require.NoError(t, d.Publish(context.Background(), Event{ID: "e1", Type: EventBookingCreated, BookingID: 7, Payload: NewBookingPayload(booking)}))
	require.NoError(t, d.Publish(context.Background(), Event{ID: "e2", Type: EventBookingDeleted, BookingID: 7}))

	require.Len(t, writer.msgs, 2)
	msg := writer.msgs[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "booking_created", string(msg.Headers[0].Value))
	assert.Contains(t, string(msg.Value), `"duration":1`)

	require.NoError(t, sink.Close())
	assert.True(t, writer.closed)
}
