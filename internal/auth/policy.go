package auth

import "github.com/spec-kit/room-booking/internal/domain"

// BookingScope tells which bookings a principal may list.
type BookingScope int

const (
	ScopeOwn BookingScope = iota
	ScopeAll
)

// CanViewBookings is always true; what is visible is decided by ScopeFor.
func CanViewBookings(_ *domain.User) bool { return true }

// ScopeFor returns the listing scope for user.
func ScopeFor(user *domain.User) BookingScope {
	if user != nil && user.IsAdmin {
		return ScopeAll
	}
	return ScopeOwn
}

// CanCreateBooking allows any authenticated user.
func CanCreateBooking(user *domain.User) bool { return user != nil }

// CanUpdateBooking restricts booking edits to admins.
func CanUpdateBooking(user *domain.User) bool { return isAdmin(user) }

// CanMutateBooking allows the owner or an admin to cancel a booking.
func CanMutateBooking(user *domain.User, booking *domain.Booking) bool {
	if user == nil || booking == nil {
		return false
	}
	return user.IsAdmin || booking.UserID == user.ID
}

func CanManageUsers(user *domain.User) bool { return isAdmin(user) }

func CanManageRooms(user *domain.User) bool { return isAdmin(user) }

func isAdmin(user *domain.User) bool {
	return user != nil && user.IsAdmin
}
