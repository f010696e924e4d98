package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/domain"
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/repository"
	apperrors "github.com/spec-kit/room-booking/pkg/util"
)

// HistoryService records booking events into the audit trail and serves it to admins.
type HistoryService struct {
	dispatcher events.Dispatcher
	history    repository.BookingHistoryRepository
	logger     *zap.Logger
}

// NewHistoryService creates the service.
func NewHistoryService(dispatcher events.Dispatcher, history repository.BookingHistoryRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{dispatcher: dispatcher, history: history, logger: logger}
}

// RegisterHandlers subscribes the recorder to every booking event.
func (h *HistoryService) RegisterHandlers() {
	if h.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{events.EventBookingCreated, events.EventBookingUpdated, events.EventBookingDeleted} {
		h.dispatcher.Subscribe(eventType, h.record)
	}
}

// ListForBooking returns the audit trail of a booking, oldest first.
func (h *HistoryService) ListForBooking(ctx context.Context, actor *domain.User, bookingID int64) ([]domain.BookingHistory, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanUpdateBooking(actor) {
		return nil, apperrors.NewForbidden("only admins can read booking history")
	}
	entries, err := h.history.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (h *HistoryService) record(ctx context.Context, event events.Event) error {
	snapshot, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("history: encode %s payload: %w", event.Type, err)
	}
	entry := &domain.BookingHistory{
		EventID:    event.ID,
		BookingID:  event.BookingID,
		ActorID:    event.ActorID,
		ChangeType: string(event.Type),
		Snapshot:   snapshot,
	}
	if err := h.history.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrEventRecorded) {
			h.logger.Debug("history entry already recorded", zap.String("event_id", event.ID))
			return nil
		}
		return fmt.Errorf("history: record %s: %w", event.Type, err)
	}
	return nil
}
