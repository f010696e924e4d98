package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Bookings       *handlers.BookingsHandler
	Rooms          *handlers.RoomsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)

	authed := cfg.AuthMiddleware.Handle
	app.Get("/login", authed, cfg.Auth.Me)

	bookings := app.Group("/bookings", authed)
	bookings.Get("/", cfg.Bookings.ListBookings)
	bookings.Post("/", cfg.Bookings.CreateBooking)
	bookings.Patch("/:id", cfg.Bookings.UpdateBooking)
	bookings.Delete("/:id", cfg.Bookings.DeleteBooking)
	bookings.Get("/:id/history", auth.RequireAdmin(), cfg.Bookings.BookingHistory)

	rooms := app.Group("/rooms", authed)
	rooms.Get("/", cfg.Rooms.ListRooms)
	rooms.Post("/", auth.RequireAdmin(), cfg.Rooms.CreateRoom)
	rooms.Delete("/:id", auth.RequireAdmin(), cfg.Rooms.DeleteRoom)

	users := app.Group("/users", authed, auth.RequireAdmin())
	users.Get("/", cfg.Users.ListUsers)
	users.Post("/", cfg.Users.CreateUser)
	users.Put("/:id", cfg.Users.UpdateUser)
	users.Delete("/:id", cfg.Users.DeleteUser)
}
