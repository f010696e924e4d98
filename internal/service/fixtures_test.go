package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/lock"
	"github.com/spec-kit/room-booking/internal/repository/memory"
)

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	auth       *AuthService
	bookings   *BookingService
	rooms      *RoomService
	users      *UserService
	history    *HistoryService
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "service-test-secret",
			TokenTTLHours:     1,
			Argon2MemoryKiB:   1024,
			Argon2Iterations:  1,
			Argon2Parallelism: 1,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	history := NewHistoryService(dispatcher, store.History(), nil)
	history.RegisterHandlers()

	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		auth:       NewAuthService(cfg, AuthDependencies{UserRepo: store.Users()}),
		bookings: NewBookingService(BookingDependencies{
			BookingRepo: store.Bookings(),
			RoomRepo:    store.Rooms(),
			UserRepo:    store.Users(),
			Locker:      lock.NewLocalLocker(5 * time.Second),
			Dispatcher:  dispatcher,
		}),
		rooms:   NewRoomService(store.Rooms(), nil),
		users:   NewUserService(cfg.Auth, store.Users(), nil),
		history: history,
	}
}

func (f *fixture) register(t *testing.T, email string) *domain.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "password",
	})
	require.NoError(t, err)
	return user
}

// admin registers the bootstrap admin; call it before any other registration.
func (f *fixture) admin(t *testing.T) *domain.User {
	t.Helper()
	u := f.register(t, "admin@example.com")
	require.True(t, u.IsAdmin)
	return u
}

func (f *fixture) room(t *testing.T, admin *domain.User, name string) *domain.Room {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), admin, name)
	require.NoError(t, err)
	return room
}

func (f *fixture) reload(t *testing.T, id int64) *domain.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
