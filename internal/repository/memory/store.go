// Package memory is a thread-safe in-memory store used for local runs and tests.
// It enforces the same uniqueness rules as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
)

type claimKey struct {
	roomID int64
	date   string
	bucket domain.SlotBucket
}

// Store holds users, rooms and bookings behind a single lock so cascades stay atomic.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	nextUserID    int64
	nextRoomID    int64
	nextBookingID int64
	nextHistoryID int64

	users    map[int64]*domain.User
	rooms    map[int64]*domain.Room
	bookings map[int64]*domain.Booking
	claims   map[claimKey]int64
	history  []domain.BookingHistory
	events   map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]*domain.User),
		rooms:    make(map[int64]*domain.Room),
		bookings: make(map[int64]*domain.Booking),
		claims:   make(map[claimKey]int64),
		events:   make(map[string]struct{}),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Rooms returns the room repository view.
func (s *Store) Rooms() repository.RoomRepository { return roomRepo{s} }

// Bookings returns the booking repository view.
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }

// History returns the booking audit trail view.
func (s *Store) History() repository.BookingHistoryRepository { return historyRepo{s} }

// ---------- Users ----------

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertUserLocked(user)
}

func (r userRepo) CreateBootstrap(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.IsAdmin = len(r.s.users) == 0
	return r.s.insertUserLocked(user)
}

func (s *Store) insertUserLocked(user *domain.User) error {
	if s.emailTakenLocked(user.Email, 0) {
		return repository.ErrEmailTaken
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	cp := *user
	s.users[cp.ID] = &cp
	return nil
}

func (s *Store) emailTakenLocked(email string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.s.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrEmailTaken
	}
	cp := *user
	cp.CreatedAt = stored.CreatedAt
	r.s.users[user.ID] = &cp
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	for bookingID, b := range r.s.bookings {
		if b.UserID == id {
			r.s.deleteBookingLocked(bookingID)
		}
	}
	return true, nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ---------- Rooms ----------

type roomRepo struct{ s *Store }

func (r roomRepo) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.rooms {
		if existing.Name == room.Name {
			return repository.ErrRoomNameTaken
		}
	}
	r.s.nextRoomID++
	room.ID = r.s.nextRoomID
	room.CreatedAt = r.s.now()
	cp := *room
	r.s.rooms[cp.ID] = &cp
	return nil
}

func (r roomRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[id]; !ok {
		return false, nil
	}
	delete(r.s.rooms, id)
	for bookingID, b := range r.s.bookings {
		if b.RoomID == id {
			r.s.deleteBookingLocked(bookingID)
		}
	}
	return true, nil
}

func (r roomRepo) GetByID(_ context.Context, id int64) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *room
	return &cp, nil
}

func (r roomRepo) List(_ context.Context) ([]domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		result = append(result, *room)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ---------- Bookings ----------

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[booking.RoomID]; !ok {
		return pgx.ErrNoRows
	}
	if _, ok := r.s.users[booking.UserID]; !ok {
		return pgx.ErrNoRows
	}
	if r.s.claimsTakenLocked(booking, 0) {
		return repository.ErrSlotTaken
	}

	r.s.nextBookingID++
	booking.ID = r.s.nextBookingID
	booking.CreatedAt = r.s.now()
	cp := *booking
	r.s.bookings[cp.ID] = &cp
	r.s.claimLocked(&cp)
	return nil
}

func (r bookingRepo) Update(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.bookings[booking.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.s.claimsTakenLocked(booking, booking.ID) {
		return repository.ErrSlotTaken
	}

	r.s.releaseLocked(stored)
	cp := *stored
	cp.Reason = booking.Reason
	cp.Slot = booking.Slot
	cp.Date = booking.Date
	cp.Status = booking.Status
	r.s.bookings[cp.ID] = &cp
	r.s.claimLocked(&cp)
	return nil
}

func (r bookingRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deleteBookingLocked(id), nil
}

func (r bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (r bookingRepo) List(_ context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Booking{}
	for _, b := range r.s.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.RoomID != nil && b.RoomID != *filter.RoomID {
			continue
		}
		if filter.Date != nil && b.Date != *filter.Date {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) claimsTakenLocked(booking *domain.Booking, exceptID int64) bool {
	for _, bucket := range booking.Slot.Buckets() {
		holder, ok := s.claims[claimKey{booking.RoomID, booking.Date, bucket}]
		if ok && holder != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) claimLocked(booking *domain.Booking) {
	for _, bucket := range booking.Slot.Buckets() {
		s.claims[claimKey{booking.RoomID, booking.Date, bucket}] = booking.ID
	}
}

func (s *Store) releaseLocked(booking *domain.Booking) {
	for _, bucket := range booking.Slot.Buckets() {
		key := claimKey{booking.RoomID, booking.Date, bucket}
		if s.claims[key] == booking.ID {
			delete(s.claims, key)
		}
	}
}

func (s *Store) deleteBookingLocked(id int64) bool {
	b, ok := s.bookings[id]
	if !ok {
		return false
	}
	s.releaseLocked(b)
	delete(s.bookings, id)
	return true
}

// ---------- History ----------

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, entry *domain.BookingHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, seen := r.s.events[entry.EventID]; seen {
		return repository.ErrEventRecorded
	}
	r.s.events[entry.EventID] = struct{}{}
	r.s.nextHistoryID++
	entry.ID = r.s.nextHistoryID
	entry.CreatedAt = r.s.now()
	cp := *entry
	cp.Snapshot = append([]byte(nil), entry.Snapshot...)
	r.s.history = append(r.s.history, cp)
	return nil
}

func (r historyRepo) ListByBooking(_ context.Context, bookingID int64) ([]domain.BookingHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.BookingHistory
	for _, entry := range r.s.history {
		if entry.BookingID == bookingID {
			result = append(result, entry)
		}
	}
	return result, nil
}
