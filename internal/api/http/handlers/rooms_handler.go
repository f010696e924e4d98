package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/room-booking/internal/api/dto"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/service"
)

// RoomsHandler manages the room catalog endpoints.
type RoomsHandler struct {
	service *service.RoomService
}

// NewRoomsHandler constructs handler.
func NewRoomsHandler(roomService *service.RoomService) *RoomsHandler {
	return &RoomsHandler{service: roomService}
}

// ListRooms GET /rooms.
func (h *RoomsHandler) ListRooms(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	rooms, err := h.service.ListRooms(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		items = append(items, dto.NewRoomResponse(&rooms[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateRoom POST /rooms.
func (h *RoomsHandler) CreateRoom(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateRoomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	room, err := h.service.CreateRoom(c.UserContext(), actor, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewRoomResponse(room)})
}

// DeleteRoom DELETE /rooms/:id.
func (h *RoomsHandler) DeleteRoom(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRoom(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
