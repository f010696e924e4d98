package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/room-booking/internal/domain"
)

// CreateBookingRequest is the POST /bookings payload. Duration is the slot: 0 morning, 1 afternoon, 2 whole day.
type CreateBookingRequest struct {
	Reason   string `json:"reason"`
	Duration *int   `json:"duration"`
	Date     string `json:"date"`
	RoomID   int64  `json:"room_id"`
}

// UpdateBookingRequest is the PATCH /bookings/:id payload.
type UpdateBookingRequest struct {
	Reason   *string `json:"reason"`
	Duration *int    `json:"duration"`
	Date     *string `json:"date"`
	Status   *string `json:"status"`
}

// BookingRoom is the room summary embedded in booking responses.
type BookingRoom struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingResponse is the booking view returned by the API.
type BookingResponse struct {
	ID        int64        `json:"id"`
	Reason    string       `json:"reason"`
	Duration  int          `json:"duration"`
	Slot      string       `json:"slot"`
	Date      string       `json:"date"`
	Status    string       `json:"status"`
	Room      BookingRoom  `json:"room"`
	User      UserResponse `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewBookingResponse maps a booking view.
func NewBookingResponse(v *domain.BookingView) BookingResponse {
	return BookingResponse{
		ID:        v.Booking.ID,
		Reason:    v.Booking.Reason,
		Duration:  int(v.Booking.Slot),
		Slot:      v.Booking.Slot.String(),
		Date:      v.Booking.Date,
		Status:    v.Booking.Status,
		Room:      BookingRoom{ID: v.Room.ID, Name: v.Room.Name},
		User:      NewUserResponse(&v.User),
		CreatedAt: v.Booking.CreatedAt,
	}
}

// BookingHistoryResponse is one audit trail entry.
type BookingHistoryResponse struct {
	ID         int64           `json:"id"`
	EventID    string          `json:"event_id"`
	BookingID  int64           `json:"booking_id"`
	ActorID    int64           `json:"actor_id"`
	ChangeType string          `json:"change_type"`
	Snapshot   json.RawMessage `json:"snapshot"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewBookingHistoryResponse maps an audit entry.
func NewBookingHistoryResponse(h *domain.BookingHistory) BookingHistoryResponse {
	return BookingHistoryResponse{
		ID:         h.ID,
		EventID:    h.EventID,
		BookingID:  h.BookingID,
		ActorID:    h.ActorID,
		ChangeType: h.ChangeType,
		Snapshot:   json.RawMessage(h.Snapshot),
		CreatedAt:  h.CreatedAt,
	}
}
