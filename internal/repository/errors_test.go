package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapUniqueViolation(t *testing.T) {
	wrap := func(code, constraint string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
	}

	assert.ErrorIs(t, mapUniqueViolation(wrap(uniqueViolation, constraintSlotClaim)), ErrSlotTaken)
	assert.ErrorIs(t, mapUniqueViolation(wrap(uniqueViolation, constraintUserEmail)), ErrEmailTaken)
	assert.ErrorIs(t, mapUniqueViolation(wrap(uniqueViolation, constraintRoomName)), ErrRoomNameTaken)
	assert.ErrorIs(t, mapUniqueViolation(wrap(uniqueViolation, constraintEventID)), ErrEventRecorded)
	assert.ErrorIs(t, mapUniqueViolation(wrap(foreignKeyViolation, "bookings_room_id_fkey")), pgx.ErrNoRows)

	other := wrap("40001", "")
	assert.Same(t, other, mapUniqueViolation(other))

	plain := errors.New("boom")
	assert.Same(t, plain, mapUniqueViolation(plain))
}
