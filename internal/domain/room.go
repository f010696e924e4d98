package domain

import "time"

// Room is a bookable physical space.
type Room struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
