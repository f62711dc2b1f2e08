package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/config"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
)

// NotificationService turns domain events into user and moderator notifications.
// Delivery is log-only until a provider is configured.
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
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventProductCreated, n.handleProductCreated)
	n.dispatcher.Subscribe(events.EventProductStatusChanged, n.handleProductStatusChanged)
	n.dispatcher.Subscribe(events.EventReportCreated, n.handleReportCreated)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleReportStatusChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.AggregateID))
	if payload, ok := event.Payload.(events.UserRegisteredPayload); ok {
		n.sendEmail(ctx, event, payload.Email, "welcome")
	}
	return nil
}

func (n *NotificationService) handleProductCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProductCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ProductCreated",
		zap.String("product_id", event.AggregateID),
		zap.String("status", string(payload.Status)))
	if payload.Status == domain.ProductStatusInactive {
		// pending approval
		n.sendWebhook(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleProductStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ProductStatusChanged", zap.String("product_id", event.AggregateID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ProductStatusChangedPayload); ok && payload.OwnerID != event.Actor.UserID {
		n.sendEmail(ctx, event, payload.OwnerID, "listing_status")
	}
	return nil
}

func (n *NotificationService) handleReportCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ReportCreated",
		zap.String("report_id", event.AggregateID),
		zap.String("priority", string(payload.Priority)))
	if payload.Priority == domain.ReportPriorityHigh || payload.Priority == domain.ReportPriorityCritical {
		n.sendWebhook(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleReportStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ReportStatusChanged",
		zap.String("report_id", event.AggregateID),
		zap.String("action", payload.Action),
		zap.String("new_status", string(payload.NewStatus)))
	switch {
	case payload.NewStatus.Closed():
		n.sendEmail(ctx, event, payload.ReporterID, "report_closed")
	case payload.Priority == domain.ReportPriorityCritical:
		n.sendWebhook(ctx, event)
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event, recipient, template string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmail",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", recipient),
		zap.String("template", template),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhook",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("aggregate_id", event.AggregateID),
		zap.String("event_type", string(event.Type)))
}
