package dto

import (
	"time"

	"github.com/souqna/marketplace/internal/domain"
)

// CreateReportRequest payload.
type CreateReportRequest struct {
	ContentType domain.ContentType  `json:"contentType"`
	ContentID   string              `json:"contentId"`
	Reason      domain.ReportReason `json:"reason"`
	Description string              `json:"description"`
}

// ReportActionRequest payload for PATCH /api/admin/reports/:id.
type ReportActionRequest struct {
	Action     string                       `json:"action"`
	ActionType *domain.ModerationActionType `json:"actionType"`
	Notes      string                       `json:"notes"`
}

// ReportResponse is the report representation.
type ReportResponse struct {
	ID           string                `json:"id"`
	ContentType  domain.ContentType    `json:"contentType"`
	ContentID    string                `json:"contentId"`
	ReportedByID string                `json:"reportedById"`
	Reason       domain.ReportReason   `json:"reason"`
	Description  string                `json:"description"`
	Priority     domain.ReportPriority `json:"priority"`
	Status       domain.ReportStatus   `json:"status"`
	ReviewedByID *string               `json:"reviewedById"`
	ReviewedAt   *time.Time            `json:"reviewedAt"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewReportResponse maps a domain report.
func NewReportResponse(r *domain.ContentReport) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		ContentType:  r.ContentType,
		ContentID:    r.ContentID,
		ReportedByID: r.ReportedByID,
		Reason:       r.Reason,
		Description:  r.Description,
		Priority:     r.Priority,
		Status:       r.Status,
		ReviewedByID: r.ReviewedByID,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ModerationActionResponse is an audit entry.
type ModerationActionResponse struct {
	ID          string                      `json:"id"`
	ReportID    string                      `json:"reportId"`
	ModeratorID string                      `json:"moderatorId"`
	ActionType  domain.ModerationActionType `json:"actionType"`
	TargetType  domain.ContentType          `json:"targetType"`
	TargetID    string                      `json:"targetId"`
	Notes       string                      `json:"notes"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// NewModerationActionResponse maps an audit entry.
func NewModerationActionResponse(a *domain.ModerationAction) ModerationActionResponse {
	return ModerationActionResponse{
		ID:          a.ID,
		ReportID:    a.ReportID,
		ModeratorID: a.ModeratorID,
		ActionType:  a.ActionType,
		TargetType:  a.TargetType,
		TargetID:    a.TargetID,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
	}
}
