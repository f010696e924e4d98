package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/lock"
	"github.com/spec-kit/room-booking/internal/observability"
	"github.com/spec-kit/room-booking/internal/repository/memory"
	"github.com/spec-kit/room-booking/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		App: config.AppConfig{Name: "room-booking-test", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:         "http-test-secret",
			TokenTTLHours:     1,
			Argon2MemoryKiB:   1024,
			Argon2Iterations:  1,
			Argon2Parallelism: 1,
		},
	}
	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	history := service.NewHistoryService(dispatcher, store.History(), logger)
	history.RegisterHandlers()

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users(), Logger: logger})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo: store.Bookings(),
		RoomRepo:    store.Rooms(),
		UserRepo:    store.Users(),
		Locker:      lock.NewLocalLocker(time.Second),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Bookings:       handlers.NewBookingsHandler(bookingService, history),
		Rooms:          handlers.NewRoomsHandler(service.NewRoomService(store.Rooms(), logger)),
		Users:          handlers.NewUsersHandler(service.NewUserService(cfg.Auth, store.Users(), logger)),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewResolver(authService.TokenManager(), store.Users())),
	})
	return app
}

type apiResponse struct {
	Status int `json:"-"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := apiResponse{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func decode[T any](t *testing.T, r apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(r.Data, &v))
	return v
}

type authBody struct {
	User struct {
		ID      int64 `json:"id"`
		IsAdmin bool  `json:"is_admin"`
	} `json:"user"`
	Token string `json:"token"`
}

func register(t *testing.T, app *fiber.App, email string) authBody {
	t.Helper()
	resp := call(t, app, fiber.MethodPost, "/register", "", fiber.Map{
		"first_name": "Test", "last_name": "User", "email": email, "password": "password",
	})
	require.Equal(t, fiber.StatusOK, resp.Status)
	return decode[authBody](t, resp)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	admin := register(t, app, "admin@example.com")
	assert.True(t, admin.User.IsAdmin)
	assert.NotEmpty(t, admin.Token)

	user := register(t, app, "user@example.com")
	assert.False(t, user.User.IsAdmin)

	dup := call(t, app, fiber.MethodPost, "/register", "", fiber.Map{
		"first_name": "A", "last_name": "B", "email": "user@example.com", "password": "x",
	})
	assert.Equal(t, fiber.StatusConflict, dup.Status)
	assert.Equal(t, "CONFLICT", dup.Error.Code)

	bad := call(t, app, fiber.MethodPost, "/register", "", fiber.Map{"email": "nope"})
	assert.Equal(t, fiber.StatusBadRequest, bad.Status)

	login := call(t, app, fiber.MethodPost, "/login", "", fiber.Map{"email": "user@example.com", "password": "password"})
	require.Equal(t, fiber.StatusOK, login.Status)
	assert.NotEmpty(t, decode[authBody](t, login).Token)

	wrong := call(t, app, fiber.MethodPost, "/login", "", fiber.Map{"email": "user@example.com", "password": "bad"})
	assert.Equal(t, fiber.StatusUnauthorized, wrong.Status)

	me := call(t, app, fiber.MethodGet, "/login", user.Token, nil)
	require.Equal(t, fiber.StatusOK, me.Status)
	assert.Contains(t, string(me.Data), `"email":"user@example.com"`)
	assert.NotContains(t, string(me.Data), "password")

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/login", "", nil).Status)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/login", "garbage", nil).Status)
}

func TestBookingEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := register(t, app, "admin@example.com")
	user := register(t, app, "user@example.com")
	other := register(t, app, "other@example.com")

	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPost, "/rooms", user.Token, fiber.Map{"name": "Blue"}).Status)
	roomResp := call(t, app, fiber.MethodPost, "/rooms", admin.Token, fiber.Map{"name": "Blue"})
	require.Equal(t, fiber.StatusCreated, roomResp.Status)
	room := decode[struct {
		ID int64 `json:"id"`
	}](t, roomResp)

	create := func(token string, duration int, date string) apiResponse {
		return call(t, app, fiber.MethodPost, "/bookings", token, fiber.Map{
			"reason": "sync", "duration": duration, "date": date, "room_id": room.ID,
		})
	}

	first := create(user.Token, 0, "2024-07-11")
	require.Equal(t, fiber.StatusCreated, first.Status)
	booking := decode[struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Duration int    `json:"duration"`
		Room     struct {
			Name string `json:"name"`
		} `json:"room"`
	}](t, first)
	assert.Equal(t, "Pending", booking.Status)
	assert.Equal(t, "Blue", booking.Room.Name)

	assert.Equal(t, fiber.StatusCreated, create(other.Token, 1, "2024-07-11").Status)
	assert.Equal(t, fiber.StatusConflict, create(other.Token, 2, "2024-07-11").Status)
	assert.Equal(t, fiber.StatusBadRequest, create(other.Token, 5, "2024-07-11").Status)
	assert.Equal(t, fiber.StatusBadRequest, create(other.Token, 0, "07/11/2024").Status)

	missingRoom := call(t, app, fiber.MethodPost, "/bookings", user.Token, fiber.Map{
		"reason": "x", "duration": 0, "date": "2024-07-12", "room_id": room.ID + 50,
	})
	assert.Equal(t, fiber.StatusNotFound, missingRoom.Status)
	noRoomID := call(t, app, fiber.MethodPost, "/bookings", user.Token, fiber.Map{
		"reason": "x", "duration": 0, "date": "2024-07-12",
	})
	assert.Equal(t, fiber.StatusNotFound, noRoomID.Status)
	noDuration := call(t, app, fiber.MethodPost, "/bookings", user.Token, fiber.Map{
		"reason": "x", "date": "2024-07-12", "room_id": room.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, noDuration.Status)
	assert.Equal(t, fiber.StatusUnauthorized, create("", 0, "2024-07-12").Status)

	list := call(t, app, fiber.MethodGet, "/bookings", user.Token, nil)
	require.Equal(t, fiber.StatusOK, list.Status)
	assert.Len(t, decode[[]json.RawMessage](t, list), 1)
	all := call(t, app, fiber.MethodGet, "/bookings", admin.Token, nil)
	assert.Len(t, decode[[]json.RawMessage](t, all), 2)

	path := "/bookings/" + strconv.FormatInt(booking.ID, 10)
	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPatch, path, user.Token, fiber.Map{"status": "Approved"}).Status)
	patched := call(t, app, fiber.MethodPatch, path, admin.Token, fiber.Map{"status": "Approved", "duration": 5})
	require.Equal(t, fiber.StatusOK, patched.Status)
	assert.Contains(t, string(patched.Data), `"status":"Approved"`)
	assert.Contains(t, string(patched.Data), `"duration":0`)
	assert.Equal(t, fiber.StatusConflict, call(t, app, fiber.MethodPatch, path, admin.Token, fiber.Map{"duration": 2}).Status)
	assert.Equal(t, fiber.StatusNotFound, call(t, app, fiber.MethodPatch, "/bookings/9999", admin.Token, fiber.Map{"status": "x"}).Status)

	history := call(t, app, fiber.MethodGet, path+"/history", admin.Token, nil)
	require.Equal(t, fiber.StatusOK, history.Status)
	assert.Len(t, decode[[]json.RawMessage](t, history), 2)
	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodGet, path+"/history", user.Token, nil).Status)

	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodDelete, path, other.Token, nil).Status)
	assert.Equal(t, fiber.StatusNoContent, call(t, app, fiber.MethodDelete, path, user.Token, nil).Status)
	assert.Equal(t, fiber.StatusNoContent, call(t, app, fiber.MethodDelete, path, other.Token, nil).Status, "already gone")
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodDelete, "/bookings/abc", user.Token, nil).Status)
}

func TestUserAdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := register(t, app, "admin@example.com")
	user := register(t, app, "user@example.com")

	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodGet, "/users", user.Token, nil).Status)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/users", "", nil).Status)

	list := call(t, app, fiber.MethodGet, "/users", admin.Token, nil)
	require.Equal(t, fiber.StatusOK, list.Status)
	assert.Len(t, decode[[]json.RawMessage](t, list), 2)

	created := call(t, app, fiber.MethodPost, "/users", admin.Token, fiber.Map{
		"first_name": "New", "last_name": "Admin", "email": "new@example.com", "password": "pw", "is_admin": true,
	})
	require.Equal(t, fiber.StatusCreated, created.Status)
	assert.Contains(t, string(created.Data), `"is_admin":true`)

	userPath := "/users/" + strconv.FormatInt(user.User.ID, 10)
	promoted := call(t, app, fiber.MethodPut, userPath, admin.Token, fiber.Map{"is_admin": true})
	require.Equal(t, fiber.StatusOK, promoted.Status)
	// the same token now carries admin rights since role is read per request
	assert.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/users", user.Token, nil).Status)

	self := "/users/" + strconv.FormatInt(admin.User.ID, 10)
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodDelete, self, admin.Token, nil).Status)
	assert.Equal(t, fiber.StatusNoContent, call(t, app, fiber.MethodDelete, userPath, admin.Token, nil).Status)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/login", user.Token, nil).Status, "deleted user's token")
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	live := call(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, live.Status)

	ready := call(t, app, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, ready.Status)

	missing := call(t, app, fiber.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, missing.Status)
	assert.Equal(t, "NOT_FOUND", missing.Error.Code)
}
