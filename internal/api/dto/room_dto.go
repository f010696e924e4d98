package dto

import (
	"time"

	"github.com/spec-kit/room-booking/internal/domain"
)

// CreateRoomRequest is the POST /rooms payload.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomResponse is the public view of a room.
type RoomResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRoomResponse maps a domain room.
func NewRoomResponse(r *domain.Room) RoomResponse {
	return RoomResponse{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}
