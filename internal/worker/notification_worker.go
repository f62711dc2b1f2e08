package worker

import (
	"context"

	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/observability"
	"github.com/souqna/marketplace/internal/service"
)

var trackedEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventProductCreated,
	events.EventProductStatusChanged,
	events.EventReportCreated,
	events.EventReportStatusChanged,
}

// StartNotificationWorker registers notification handlers and counts every published event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || metrics == nil {
		return
	}
	for _, eventType := range trackedEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordEvent(string(event.Type))
			return nil
		})
	}
}
