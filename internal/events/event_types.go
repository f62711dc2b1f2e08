package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/souqna/marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventProductCreated       EventType = "product_created"
	EventProductStatusChanged EventType = "product_status_changed"
	EventReportCreated        EventType = "report_created"
	EventReportStatusChanged  EventType = "report_status_changed"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email        string `json:"email"`
	TermsVersion string `json:"terms_version"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	OwnerID string               `json:"owner_id"`
	Title   string               `json:"title"`
	Status  domain.ProductStatus `json:"status"`
}

// ProductStatusChangedPayload payload.
type ProductStatusChangedPayload struct {
	OwnerID   string               `json:"owner_id"`
	OldStatus domain.ProductStatus `json:"old_status"`
	NewStatus domain.ProductStatus `json:"new_status"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	ContentType domain.ContentType    `json:"content_type"`
	ContentID   string                `json:"content_id"`
	Reason      domain.ReportReason   `json:"reason"`
	Priority    domain.ReportPriority `json:"priority"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	Action     string                       `json:"action"`
	OldStatus  domain.ReportStatus          `json:"old_status"`
	NewStatus  domain.ReportStatus          `json:"new_status"`
	Priority   domain.ReportPriority        `json:"priority"`
	ActionType *domain.ModerationActionType `json:"action_type,omitempty"`
	ReporterID string                       `json:"reporter_id"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, aggregateID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Actor:       actor,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}
