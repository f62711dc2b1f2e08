package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/observability"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

const maxReportDescription = 2000

// Moderation actions accepted by ApplyAction.
const (
	ReportActionReview   = "review"
	ReportActionResolve  = "resolve"
	ReportActionDismiss  = "dismiss"
	ReportActionEscalate = "escalate"
)

// ReportService runs the content report and moderation pipeline.
type ReportService struct {
	reports    repository.ReportRepository
	actions    repository.ModerationActionRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ReportDependencies bundles repositories for report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	ActionRepo  repository.ModerationActionRepository
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// ReportInput describes report submission payload.
type ReportInput struct {
	ContentType domain.ContentType
	ContentID   string
	Reason      domain.ReportReason
	Description string
}

// ReportActionInput describes a moderator decision.
type ReportActionInput struct {
	Action     string
	ActionType *domain.ModerationActionType
	Notes      string
}

// ReportQuery describes report listing filters.
type ReportQuery struct {
	Statuses    []domain.ReportStatus
	Priorities  []domain.ReportPriority
	ContentType *domain.ContentType
	Limit       int
	Offset      int
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:    deps.ReportRepo,
		actions:    deps.ActionRepo,
		products:   deps.ProductRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Create files a report. A reporter may hold only one open report per piece of content.
func (s *ReportService) Create(ctx context.Context, identity *domain.Identity, input ReportInput, settings domain.AppSettings) (*domain.ContentReport, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	if err := requireOpen(identity, settings); err != nil {
		return nil, err
	}

	contentID := strings.TrimSpace(input.ContentID)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if !input.ContentType.Valid() {
		details["contentType"] = "must be PRODUCT, USER, MESSAGE or ADVERTISEMENT"
	}
	if contentID == "" {
		details["contentId"] = "required"
	}
	if !input.Reason.Valid() {
		details["reason"] = "unknown reason"
	}
	if len(description) > maxReportDescription {
		details["description"] = "too long"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid report", details)
	}
	if input.ContentType == domain.ContentTypeUser && contentID == identity.SubjectID {
		return nil, apperrors.NewValidationError("you cannot report yourself", nil)
	}

	exists, err := s.reports.HasOpenReport(ctx, identity.SubjectID, input.ContentType, contentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateReportError()
	}

	report := &domain.ContentReport{
		ContentType:  input.ContentType,
		ContentID:    contentID,
		ReportedByID: identity.SubjectID,
		Reason:       input.Reason,
		Description:  description,
		Priority:     domain.InitialPriority(input.Reason),
		Status:       domain.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		if _, dup := duplicateConstraint(err); dup {
			return nil, duplicateReportError()
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventReportCreated, report.ID, actorFor(identity),
		events.ReportCreatedPayload{
			ContentType: report.ContentType,
			ContentID:   report.ContentID,
			Reason:      report.Reason,
			Priority:    report.Priority,
		}))
	return report, nil
}

// ApplyAction moves a report through its lifecycle on behalf of an admin.
func (s *ReportService) ApplyAction(ctx context.Context, identity *domain.Identity, reportID string, input ReportActionInput) (*domain.ContentReport, error) {
	if err := auth.RequireRole(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	switch action {
	case ReportActionReview, ReportActionResolve, ReportActionDismiss, ReportActionEscalate:
	default:
		return nil, apperrors.NewValidationCode("INVALID_ACTION", "action must be review, resolve, dismiss or escalate")
	}

	report, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	oldStatus := report.Status
	now := s.now().UTC()

	var audit *domain.ModerationAction
	switch action {
	case ReportActionEscalate:
		report.Priority = domain.ReportPriorityCritical
	case ReportActionReview:
		if report.Status != domain.ReportStatusPending {
			return nil, transitionError(report.Status, action)
		}
		report.Status = domain.ReportStatusReviewing
	case ReportActionResolve, ReportActionDismiss:
		if !report.Status.Open() {
			return nil, transitionError(report.Status, action)
		}
		actionType, err := dispositionFor(action, input.ActionType, report.ContentType)
		if err != nil {
			return nil, err
		}
		report.Status = domain.ReportStatusResolved
		if action == ReportActionDismiss {
			report.Status = domain.ReportStatusDismissed
		}
		audit = &domain.ModerationAction{
			ReportID:    report.ID,
			ModeratorID: identity.SubjectID,
			ActionType:  actionType,
			TargetType:  report.ContentType,
			TargetID:    report.ContentID,
			Notes:       strings.TrimSpace(input.Notes),
		}
	}
	if action != ReportActionEscalate {
		reviewer := identity.SubjectID
		report.ReviewedByID = &reviewer
		report.ReviewedAt = &now
	}

	if audit != nil {
		err = s.reports.UpdateWithAction(ctx, report, audit)
	} else {
		err = s.reports.Update(ctx, report)
	}
	if errors.Is(err, repository.ErrReportClosed) {
		return nil, apperrors.NewDomainError("INVALID_TRANSITION", "report was already closed", http.StatusConflict,
			map[string]any{"action": action})
	}
	if err != nil {
		return nil, err
	}

	var actionType *domain.ModerationActionType
	if audit != nil {
		actionType = &audit.ActionType
		s.metrics.RecordModerationAction(string(audit.ActionType))
		s.enforce(ctx, report, audit)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventReportStatusChanged, report.ID, actorFor(identity),
		events.ReportStatusChangedPayload{
			Action:     action,
			OldStatus:  oldStatus,
			NewStatus:  report.Status,
			Priority:   report.Priority,
			ActionType: actionType,
			ReporterID: report.ReportedByID,
		}))
	return report, nil
}

// Get returns a report to its reporter or to a report viewer.
func (s *ReportService) Get(ctx context.Context, identity *domain.Identity, id string) (*domain.ContentReport, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.ReportedByID == identity.SubjectID {
		return report, nil
	}
	viewer, err := s.canViewAll(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !viewer {
		return nil, apperrors.NewNotFound("report", nil)
	}
	return report, nil
}

// List returns all matching reports to admins and only their own to everyone else.
func (s *ReportService) List(ctx context.Context, identity *domain.Identity, query ReportQuery) ([]domain.ContentReport, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	filter := repository.ReportFilter{
		Statuses:    query.Statuses,
		Priorities:  query.Priorities,
		ContentType: query.ContentType,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}
	viewer, err := s.canViewAll(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !viewer {
		filter.ReportedByID = &identity.SubjectID
	}
	return s.reports.List(ctx, filter)
}

// ListActions returns the moderation audit trail of a report.
func (s *ReportService) ListActions(ctx context.Context, identity *domain.Identity, reportID string) ([]domain.ModerationAction, error) {
	if err := auth.RequireRole(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, reportID); err != nil {
		return nil, err
	}
	return s.actions.ListByReport(ctx, reportID)
}

// enforce applies the side effects of a disposition. Failures are logged; the
// disposition itself is already committed.
func (s *ReportService) enforce(ctx context.Context, report *domain.ContentReport, action *domain.ModerationAction) {
	logger := s.logger.With(
		zap.String("report_id", report.ID),
		zap.String("action_type", string(action.ActionType)),
		zap.String("target_id", report.ContentID))

	switch action.ActionType {
	case domain.ActionContentRemoved:
		if report.ContentType != domain.ContentTypeProduct {
			logger.Info("content removal recorded; no automatic enforcement for content type",
				zap.String("content_type", string(report.ContentType)))
			return
		}
		if err := s.products.UpdateStatus(ctx, report.ContentID, domain.ProductStatusDeleted); err != nil {
			logger.Warn("failed to remove reported product", zap.Error(err))
			return
		}
		logger.Info("removed reported product")
	case domain.ActionUserSuspended:
		userID := report.ContentID
		if report.ContentType == domain.ContentTypeProduct {
			product, err := s.products.GetByID(ctx, report.ContentID)
			if err != nil {
				logger.Warn("failed to load reported product owner", zap.Error(err))
				return
			}
			userID = product.OwnerID
		}
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			logger.Warn("failed to load user to suspend", zap.Error(err))
			return
		}
		if user.Role == domain.RoleAdmin {
			logger.Warn("refusing to suspend an admin account", zap.String("user_id", user.ID))
			return
		}
		user.Status = domain.UserStatusSuspended
		if err := s.users.Update(ctx, user); err != nil {
			logger.Warn("failed to suspend user", zap.Error(err))
			return
		}
		logger.Info("suspended user", zap.String("user_id", user.ID))
	}
}

func (s *ReportService) load(ctx context.Context, id string) (*domain.ContentReport, error) {
	report, err := s.reports.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("report", nil)
	}
	return report, err
}

func (s *ReportService) canViewAll(ctx context.Context, identity *domain.Identity) (bool, error) {
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsActive() && user.Role == domain.RoleAdmin, nil
}

// dispositionFor derives the audit action type. Dismissal is always NO_ACTION; resolution
// defaults to CONTENT_REMOVED and may be overridden with a warning or a suspension.
func dispositionFor(action string, override *domain.ModerationActionType, contentType domain.ContentType) (domain.ModerationActionType, error) {
	if action == ReportActionDismiss {
		if override != nil && *override != domain.ActionNoAction {
			return "", apperrors.NewValidationError("a dismissal records NO_ACTION", map[string]any{"field": "actionType"})
		}
		return domain.ActionNoAction, nil
	}
	if override == nil {
		return domain.ActionContentRemoved, nil
	}
	switch *override {
	case domain.ActionContentRemoved, domain.ActionWarning:
		return *override, nil
	case domain.ActionUserSuspended:
		if contentType != domain.ContentTypeUser && contentType != domain.ContentTypeProduct {
			return "", apperrors.NewValidationError("suspension applies to user or product reports",
				map[string]any{"field": "actionType"})
		}
		return *override, nil
	}
	return "", apperrors.NewValidationError("invalid action type for resolve", map[string]any{"field": "actionType"})
}

func transitionError(status domain.ReportStatus, action string) error {
	return apperrors.NewDomainError("INVALID_TRANSITION", "report cannot be moved from its current status", http.StatusConflict,
		map[string]any{"status": status, "action": action})
}

func duplicateReportError() error {
	return apperrors.NewDomainError("DUPLICATE_REPORT", "you already have an open report for this content", http.StatusConflict, nil)
}
