package events

import (
	"time"

	"github.com/spec-kit/room-booking/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated EventType = "booking_created"
	EventBookingUpdated EventType = "booking_updated"
	EventBookingDeleted EventType = "booking_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookingID int64       `json:"booking_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingPayload carries the booking state after the change.
type BookingPayload struct {
	RoomID int64           `json:"room_id"`
	UserID int64           `json:"user_id"`
	Date   string          `json:"date"`
	Slot   domain.TimeSlot `json:"duration"`
	Status string          `json:"status"`
	Reason string          `json:"reason"`
}

// BookingDeletedPayload identifies the removed booking.
type BookingDeletedPayload struct {
	RoomID int64  `json:"room_id"`
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
}

// NewBookingPayload snapshots booking for an event.
func NewBookingPayload(b *domain.Booking) BookingPayload {
	return BookingPayload{
		RoomID: b.RoomID,
		UserID: b.UserID,
		Date:   b.Date,
		Slot:   b.Slot,
		Status: b.Status,
		Reason: b.Reason,
	}
}
