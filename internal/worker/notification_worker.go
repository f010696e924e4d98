package worker

import (
	"github.com/spec-kit/room-booking/internal/events"
	"github.com/spec-kit/room-booking/internal/service"
)

// Subscribers lists the consumers attached to the booking event dispatcher.
// Nil members are skipped.
type Subscribers struct {
	Notifications *service.NotificationService
	History       *service.HistoryService
	Kafka         *events.KafkaSink
}

// StartNotificationWorker registers booking event consumers on dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, subs Subscribers) {
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.History != nil {
		subs.History.RegisterHandlers()
	}
	if subs.Kafka != nil && dispatcher != nil {
		subs.Kafka.Subscribe(dispatcher)
	}
}
