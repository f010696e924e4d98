// Package scheduler decides whether a requested slot fits beside existing bookings
// of the same room and date.
package scheduler

import "github.com/spec-kit/room-booking/internal/domain"

// Decision is the outcome of a conflict check.
type Decision struct {
	Accepted     bool
	ConflictWith *domain.Booking
}

// Conflicts reports whether two slots on the same room and date overlap.
// Only a Morning/Afternoon pair can share a day.
func Conflicts(existing, requested domain.TimeSlot) bool {
	return existing == requested ||
		existing == domain.SlotWholeDay ||
		requested == domain.SlotWholeDay
}

// Check tests requested against bookings that share its room and date.
// The first conflicting booking in input order is reported.
func Check(existing []domain.Booking, requested domain.TimeSlot) Decision {
	for i := range existing {
		if Conflicts(existing[i].Slot, requested) {
			conflict := existing[i]
			return Decision{Accepted: false, ConflictWith: &conflict}
		}
	}
	return Decision{Accepted: true}
}

// CheckExcluding is Check ignoring the booking with id self, used when a booking is moved.
func CheckExcluding(existing []domain.Booking, requested domain.TimeSlot, self int64) Decision {
	others := make([]domain.Booking, 0, len(existing))
	for _, b := range existing {
		if b.ID != self {
			others = append(others, b)
		}
	}
	return Check(others, requested)
}
