package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// RoomService manages the room catalog.
type RoomService struct {
	rooms  repository.RoomRepository
	logger *zap.Logger
}

// NewRoomService constructs the service.
func NewRoomService(rooms repository.RoomRepository, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{rooms: rooms, logger: logger}
}

// ListRooms returns all rooms ordered by name.
func (s *RoomService) ListRooms(ctx context.Context, actor *domain.User) ([]domain.Room, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rooms, nil
}

// CreateRoom adds a uniquely named room.
func (s *RoomService) CreateRoom(ctx context.Context, actor *domain.User, name string) (*domain.Room, error) {
	if err := requireRoomAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("invalid room", map[string]any{"name": "required"})
	}

	room := &domain.Room{Name: name}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrRoomNameTaken) {
			return nil, apperrors.NewConflict("room name already exists", map[string]any{"name": name})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("room created", zap.Int64("room_id", room.ID), zap.String("name", room.Name))
	return room, nil
}

// DeleteRoom removes a room and its bookings. Deleting an absent room succeeds.
func (s *RoomService) DeleteRoom(ctx context.Context, actor *domain.User, id int64) error {
	if err := requireRoomAdmin(actor); err != nil {
		return err
	}
	deleted, err := s.rooms.Delete(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if deleted {
		s.logger.Info("room deleted", zap.Int64("room_id", id), zap.Int64("actor_id", actor.ID))
	}
	return nil
}

func requireRoomAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanManageRooms(actor) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
