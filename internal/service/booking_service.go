package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/lock"
	"github.com/spec-kit/room-booking/internal/repository"
	"github.com/spec-kit/room-booking/internal/scheduler"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// BookingService coordinates booking workflows.
type BookingService struct {
	bookings   repository.BookingRepository
	rooms      repository.RoomRepository
	users      repository.UserRepository
	locker     lock.Locker
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	BookingRepo repository.BookingRepository
	RoomRepo    repository.RoomRepository
	UserRepo    repository.UserRepository
	Locker      lock.Locker
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// BookingCreateInput describes booking creation payload.
type BookingCreateInput struct {
	Reason string
	Slot   int
	Date   string
	RoomID int64
}

// BookingPatch describes an admin edit. Nil, empty or out-of-range values keep the stored field.
type BookingPatch struct {
	Reason *string
	Slot   *int
	Date   *string
	Status *string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewLocalLocker(0)
	}
	return &BookingService{
		bookings:   deps.BookingRepo,
		rooms:      deps.RoomRepo,
		users:      deps.UserRepo,
		locker:     locker,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateBooking reserves a room slot for actor.
func (s *BookingService) CreateBooking(ctx context.Context, actor *domain.User, input BookingCreateInput) (*domain.BookingView, error) {
	if !auth.CanCreateBooking(actor) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	slot := domain.TimeSlot(input.Slot)
	reason := strings.TrimSpace(input.Reason)
	fieldErrs := map[string]any{}
	if reason == "" {
		fieldErrs["reason"] = "required"
	}
	if !slot.Valid() {
		fieldErrs["duration"] = "must be 0 (morning), 1 (afternoon) or 2 (whole day)"
	}
	if _, err := domain.ParseDate(input.Date); err != nil {
		fieldErrs["date"] = "must be YYYY-MM-DD"
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("invalid booking", fieldErrs)
	}

	room, err := s.rooms.GetByID(ctx, input.RoomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("room", map[string]any{"room_id": input.RoomID})
		}
		return nil, apperrors.MapError(err)
	}

	release, err := s.acquire(ctx, room.ID, input.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureFree(ctx, room.ID, input.Date, slot, 0); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		Reason: reason,
		Slot:   slot,
		Date:   input.Date,
		Status: domain.StatusPending,
		RoomID: room.ID,
		UserID: actor.ID,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// room removed after the lookup above
			return nil, apperrors.NewNotFound("room", map[string]any{"room_id": room.ID})
		}
		return nil, s.mapWriteError(err, booking)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingCreated,
		BookingID: booking.ID,
		ActorID:   actor.ID,
		Payload:   events.NewBookingPayload(booking),
	})
	return &domain.BookingView{Booking: *booking, Room: *room, User: *actor}, nil
}

// ListBookings returns every booking for admins and only their own for everyone else.
func (s *BookingService) ListBookings(ctx context.Context, actor *domain.User) ([]domain.BookingView, error) {
	if actor == nil || !auth.CanViewBookings(actor) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.BookingFilter{}
	if auth.ScopeFor(actor) == auth.ScopeOwn {
		filter.UserID = &actor.ID
	}
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rooms := map[int64]*domain.Room{}
	users := map[int64]*domain.User{actor.ID: actor}
	views := make([]domain.BookingView, 0, len(bookings))
	for i := range bookings {
		view, err := s.view(ctx, &bookings[i], rooms, users)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// room or owner removed concurrently
				continue
			}
			return nil, apperrors.MapError(err)
		}
		views = append(views, *view)
	}
	return views, nil
}

// UpdateBooking applies an admin patch. A changed date or slot is re-checked for conflicts.
func (s *BookingService) UpdateBooking(ctx context.Context, actor *domain.User, id int64, patch BookingPatch) (*domain.BookingView, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanUpdateBooking(actor) {
		return nil, apperrors.NewForbidden("only admins can update bookings")
	}

	releaseBooking, err := s.locker.Acquire(ctx, lock.BookingKey(id))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("lock booking %d: %w", id, err))
	}
	defer releaseBooking()

	// read under the booking lock so concurrent patches apply in turn
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", map[string]any{"booking_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	next, err := applyBookingPatch(*current, patch)
	if err != nil {
		return nil, err
	}

	if next.Date != current.Date || next.Slot != current.Slot {
		release, err := s.acquire(ctx, next.RoomID, next.Date)
		if err != nil {
			return nil, err
		}
		defer release()

		if err := s.ensureFree(ctx, next.RoomID, next.Date, next.Slot, next.ID); err != nil {
			return nil, err
		}
	}

	if err := s.bookings.Update(ctx, &next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", map[string]any{"booking_id": id})
		}
		return nil, s.mapWriteError(err, &next)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingUpdated,
		BookingID: next.ID,
		ActorID:   actor.ID,
		Payload:   events.NewBookingPayload(&next),
	})

	view, err := s.view(ctx, &next, map[int64]*domain.Room{}, map[int64]*domain.User{actor.ID: actor})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return view, nil
}

// DeleteBooking cancels a booking. Deleting an absent booking succeeds.
func (s *BookingService) DeleteBooking(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if !auth.CanMutateBooking(actor, booking) {
		return apperrors.NewForbidden("only the owner or an admin can delete this booking")
	}

	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if deleted {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventBookingDeleted,
			BookingID: booking.ID,
			ActorID:   actor.ID,
			Payload: events.BookingDeletedPayload{
				RoomID: booking.RoomID,
				UserID: booking.UserID,
				Date:   booking.Date,
			},
		})
	}
	return nil
}

func (s *BookingService) acquire(ctx context.Context, roomID int64, date string) (func(), error) {
	release, err := s.locker.Acquire(ctx, lock.RoomDayKey(roomID, date))
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("lock room %d on %s: %w", roomID, date, err))
	}
	return release, nil
}

// ensureFree runs the conflict check against the other bookings of (room, date).
// Must be called while holding the room/date lock.
func (s *BookingService) ensureFree(ctx context.Context, roomID int64, date string, slot domain.TimeSlot, self int64) error {
	existing, err := s.bookings.List(ctx, repository.BookingFilter{RoomID: &roomID, Date: &date})
	if err != nil {
		return apperrors.MapError(err)
	}
	decision := scheduler.CheckExcluding(existing, slot, self)
	if decision.Accepted {
		return nil
	}
	return apperrors.NewConflict("room already booked for this slot", map[string]any{
		"room_id":                roomID,
		"date":                   date,
		"conflicting_booking_id": decision.ConflictWith.ID,
	})
}

func (s *BookingService) mapWriteError(err error, booking *domain.Booking) error {
	if errors.Is(err, repository.ErrSlotTaken) {
		return apperrors.NewConflict("room already booked for this slot", map[string]any{
			"room_id": booking.RoomID,
			"date":    booking.Date,
		})
	}
	return apperrors.NewInternalError(err)
}

func (s *BookingService) view(ctx context.Context, b *domain.Booking, rooms map[int64]*domain.Room, users map[int64]*domain.User) (*domain.BookingView, error) {
	room, ok := rooms[b.RoomID]
	if !ok {
		loaded, err := s.rooms.GetByID(ctx, b.RoomID)
		if err != nil {
			return nil, err
		}
		rooms[b.RoomID] = loaded
		room = loaded
	}
	user, ok := users[b.UserID]
	if !ok {
		loaded, err := s.users.GetByID(ctx, b.UserID)
		if err != nil {
			return nil, err
		}
		users[b.UserID] = loaded
		user = loaded
	}
	return &domain.BookingView{Booking: *b, Room: *room, User: *user}, nil
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish booking event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err))
	}
}

func applyBookingPatch(b domain.Booking, patch BookingPatch) (domain.Booking, error) {
	if v, ok := nonEmpty(patch.Reason); ok {
		b.Reason = v
	}
	if v, ok := nonEmpty(patch.Status); ok {
		b.Status = v
	}
	if patch.Slot != nil {
		if slot := domain.TimeSlot(*patch.Slot); slot.Valid() {
			b.Slot = slot
		}
	}
	if v, ok := nonEmpty(patch.Date); ok {
		if _, err := domain.ParseDate(v); err != nil {
			return b, apperrors.NewValidationError("invalid booking", map[string]any{"date": "must be YYYY-MM-DD"})
		}
		b.Date = v
	}
	return b, nil
}

func nonEmpty(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}
