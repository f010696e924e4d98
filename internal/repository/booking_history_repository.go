package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/room-booking/internal/domain"
)

// BookingHistoryRepository stores the booking audit trail.
// Entries outlive the booking they describe.
type BookingHistoryRepository interface {
	Create(ctx context.Context, entry *domain.BookingHistory) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error)
}

type bookingHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewBookingHistoryRepository builds repository.
func NewBookingHistoryRepository(pool *pgxpool.Pool) BookingHistoryRepository {
	return &bookingHistoryRepository{pool: pool}
}

func (r *bookingHistoryRepository) Create(ctx context.Context, entry *domain.BookingHistory) error {
	const query = `
        INSERT INTO booking_history (event_id, booking_id, actor_id, change_type, snapshot)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		entry.EventID,
		entry.BookingID,
		entry.ActorID,
		entry.ChangeType,
		entry.Snapshot,
	).Scan(&entry.ID, &entry.CreatedAt)
	return mapUniqueViolation(err)
}

func (r *bookingHistoryRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error) {
	const query = `
        SELECT id, event_id, booking_id, actor_id, change_type, snapshot, created_at
        FROM booking_history WHERE booking_id=$1 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BookingHistory
	for rows.Next() {
		var entry domain.BookingHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.BookingID,
			&entry.ActorID,
			&entry.ChangeType,
			&entry.Snapshot,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
