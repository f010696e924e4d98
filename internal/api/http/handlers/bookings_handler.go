package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/service"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// BookingsHandler manages booking endpoints.
type BookingsHandler struct {
	service *service.BookingService
	history *service.HistoryService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService, historyService *service.HistoryService) *BookingsHandler {
	return &BookingsHandler{service: bookingService, history: historyService}
}

// ListBookings GET /bookings.
func (h *BookingsHandler) ListBookings(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListBookings(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.BookingResponse, 0, len(views))
	for i := range views {
		items = append(items, dto.NewBookingResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateBooking POST /bookings.
func (h *BookingsHandler) CreateBooking(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Duration == nil {
		return apperrors.NewValidationError("duration required", map[string]any{"duration": "required"})
	}

	view, err := h.service.CreateBooking(c.UserContext(), actor, service.BookingCreateInput{
		Reason: req.Reason,
		Slot:   *req.Duration,
		Date:   req.Date,
		RoomID: req.RoomID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewBookingResponse(view)})
}

// UpdateBooking PATCH /bookings/:id.
func (h *BookingsHandler) UpdateBooking(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	view, err := h.service.UpdateBooking(c.UserContext(), actor, id, service.BookingPatch{
		Reason: req.Reason,
		Slot:   req.Duration,
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingResponse(view)})
}

// DeleteBooking DELETE /bookings/:id.
func (h *BookingsHandler) DeleteBooking(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteBooking(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BookingHistory GET /bookings/:id/history.
func (h *BookingsHandler) BookingHistory(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	entries, err := h.history.ListForBooking(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	items := make([]dto.BookingHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewBookingHistoryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
