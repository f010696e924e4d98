package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrEmailTaken is returned when a user email is already registered.
	ErrEmailTaken = errors.New("repository: email already registered")
	// ErrRoomNameTaken is returned when a room name is already in use.
	ErrRoomNameTaken = errors.New("repository: room name already in use")
	// ErrSlotTaken is returned when a booking would claim an occupied half-day bucket.
	ErrSlotTaken = errors.New("repository: slot already booked")
	// ErrEventRecorded is returned when a history entry for the event already exists.
	ErrEventRecorded = errors.New("repository: event already recorded")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Unique constraint names declared in migrations/.
const (
	constraintUserEmail = "users_email_key"
	constraintRoomName  = "rooms_name_key"
	constraintSlotClaim = "booking_slot_claims_pkey"
	constraintEventID   = "booking_history_event_key"
)

// mapUniqueViolation turns constraint errors into repository sentinels. A
// foreign key violation means the referenced row is gone and reads as pgx.ErrNoRows,
// the same answer the in-memory store gives.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == foreignKeyViolation {
		return pgx.ErrNoRows
	}
	if pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintUserEmail:
		return ErrEmailTaken
	case constraintRoomName:
		return ErrRoomNameTaken
	case constraintSlotClaim:
		return ErrSlotTaken
	case constraintEventID:
		return ErrEventRecorded
	default:
		return err
	}
}
