package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/room-booking/internal/config"
	"github.com/spec-kit/room-booking/internal/events"
)

// NotificationService reacts to booking events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	n.dispatcher.Subscribe(events.EventBookingUpdated, n.handleBookingUpdated)
	n.dispatcher.Subscribe(events.EventBookingDeleted, n.handleBookingDeleted)
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", eventFields(event)...)
	n.notifyOwner(ctx, event)
	n.notifyWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingUpdated", eventFields(event)...)
	n.notifyOwner(ctx, event)
	n.notifyWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingDeleted", eventFields(event)...)
	n.notifyWebhook(ctx, event)
	return nil
}

func (n *NotificationService) notifyOwner(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("booking_id", event.BookingID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) notifyWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("booking_id", event.BookingID),
		zap.String("event_type", string(event.Type)))
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("booking_id", event.BookingID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload),
	}
}
