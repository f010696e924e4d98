package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/room-booking/internal/domain"
)

// BookingFilter narrows booking listings. Nil fields are ignored.
type BookingFilter struct {
	UserID *int64
	RoomID *int64
	Date   *string
}

// BookingRepository encapsulates booking persistence.
//
// Create and Update claim the half-day buckets of the booking's slot for its
// (room, date); a clash with another booking's claim fails with ErrSlotTaken.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}

const bookingColumns = `id, reason, slot, booking_date, status, room_id, user_id, created_at`

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository instantiates repository.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (reason, slot, booking_date, status, room_id, user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return r.inRoomDayTx(ctx, booking.RoomID, booking.Date, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			booking.Reason,
			int(booking.Slot),
			booking.Date,
			booking.Status,
			booking.RoomID,
			booking.UserID,
		).Scan(&booking.ID, &booking.CreatedAt); err != nil {
			return err
		}
		return insertClaims(ctx, tx, booking)
	})
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	const query = `
        UPDATE bookings SET reason=$1, slot=$2, booking_date=$3, status=$4
        WHERE id=$5`

	return r.inRoomDayTx(ctx, booking.RoomID, booking.Date, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, query,
			booking.Reason,
			int(booking.Slot),
			booking.Date,
			booking.Status,
			booking.ID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if _, err := tx.Exec(ctx, `DELETE FROM booking_slot_claims WHERE booking_id=$1`, booking.ID); err != nil {
			return err
		}
		return insertClaims(ctx, tx, booking)
	})
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		clauses = append(clauses, fmt.Sprintf("room_id=$%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		clauses = append(clauses, fmt.Sprintf("booking_date=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY booking_date, id`,
		bookingColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *booking)
	}
	return result, rows.Err()
}

// inRoomDayTx runs fn in a transaction holding the advisory lock for (room, date).
func (r *bookingRepository) inRoomDayTx(ctx context.Context, roomID int64, date string, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	key := fmt.Sprintf("%d:%s", roomID, date)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return mapUniqueViolation(err)
	}
	return tx.Commit(ctx)
}

func insertClaims(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	const query = `
        INSERT INTO booking_slot_claims (room_id, booking_date, bucket, booking_id)
        VALUES ($1,$2,$3,$4)`
	for _, bucket := range booking.Slot.Buckets() {
		if _, err := tx.Exec(ctx, query, booking.RoomID, booking.Date, string(bucket), booking.ID); err != nil {
			return err
		}
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking domain.Booking
		slot    int
	)
	if err := row.Scan(
		&booking.ID,
		&booking.Reason,
		&slot,
		&booking.Date,
		&booking.Status,
		&booking.RoomID,
		&booking.UserID,
		&booking.CreatedAt,
	); err != nil {
		return nil, err
	}
	booking.Slot = domain.TimeSlot(slot)
	return &booking, nil
}
