package domain

import (
	"fmt"
	"time"
)

// TimeSlot is the part of a day a booking occupies.
type TimeSlot int

const (
	SlotMorning   TimeSlot = 0
	SlotAfternoon TimeSlot = 1
	SlotWholeDay  TimeSlot = 2
)

// SlotBucket is a half-day unit used for store level uniqueness.
type SlotBucket string

const (
	BucketMorning   SlotBucket = "AM"
	BucketAfternoon SlotBucket = "PM"
)

// DateLayout is the calendar date format bookings are stored with.
const DateLayout = "2006-01-02"

// StatusPending is the status every new booking starts in.
const StatusPending = "Pending"

// Valid reports whether s is one of the known slots.
func (s TimeSlot) Valid() bool {
	return s >= SlotMorning && s <= SlotWholeDay
}

// Buckets returns the half-day buckets claimed by s.
// WholeDay claims both.
func (s TimeSlot) Buckets() []SlotBucket {
	switch s {
	case SlotMorning:
		return []SlotBucket{BucketMorning}
	case SlotAfternoon:
		return []SlotBucket{BucketAfternoon}
	case SlotWholeDay:
		return []SlotBucket{BucketMorning, BucketAfternoon}
	default:
		return nil
	}
}

func (s TimeSlot) String() string {
	switch s {
	case SlotMorning:
		return "Morning"
	case SlotAfternoon:
		return "Afternoon"
	case SlotWholeDay:
		return "WholeDay"
	default:
		return fmt.Sprintf("TimeSlot(%d)", int(s))
	}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// Booking reserves a room for a slot on a date.
type Booking struct {
	ID        int64
	Reason    string
	Slot      TimeSlot
	Date      string
	Status    string
	RoomID    int64
	UserID    int64
	CreatedAt time.Time
}

// BookingView is a booking joined with its room and owner.
type BookingView struct {
	Booking Booking
	Room    Room
	User    User
}

// BookingHistory is one audit entry for a booking change.
type BookingHistory struct {
	ID         int64
	EventID    string
	BookingID  int64
	ActorID    int64
	ChangeType string
	// Snapshot is the JSON encoded event payload.
	Snapshot  []byte
	CreatedAt time.Time
}
