package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/api/dto"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/service"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// ReportsHandler exposes content reports and the moderation queue.
type ReportsHandler struct {
	reports  *service.ReportService
	settings *service.SettingsService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, settings *service.SettingsService) *ReportsHandler {
	return &ReportsHandler{reports: reports, settings: settings}
}

// Create POST /api/reports.
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}

	report, err := h.reports.Create(c.UserContext(), auth.OptionalIdentity(c), service.ReportInput{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		Reason:      req.Reason,
		Description: req.Description,
	}, settings)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// List GET /api/reports.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	query := service.ReportQuery{Limit: limit, Offset: offset}
	for _, s := range splitCSV(c.Query("status")) {
		query.Statuses = append(query.Statuses, domain.ReportStatus(s))
	}
	for _, p := range splitCSV(c.Query("priority")) {
		query.Priorities = append(query.Priorities, domain.ReportPriority(p))
	}
	if raw := splitCSV(c.Query("contentType")); len(raw) > 0 {
		contentType := domain.ContentType(raw[0])
		query.ContentType = &contentType
	}

	reports, err := h.reports.List(c.UserContext(), auth.OptionalIdentity(c), query)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.NewReportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "report")
	if err != nil {
		return err
	}
	report, err := h.reports.Get(c.UserContext(), auth.OptionalIdentity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// ApplyAction PATCH /api/admin/reports/:id.
func (h *ReportsHandler) ApplyAction(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "report")
	if err != nil {
		return err
	}
	var req dto.ReportActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.reports.ApplyAction(c.UserContext(), auth.OptionalIdentity(c), id, service.ReportActionInput{
		Action:     req.Action,
		ActionType: req.ActionType,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewReportResponse(report)})
}

// ListActions GET /api/admin/reports/:id/actions.
func (h *ReportsHandler) ListActions(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "report")
	if err != nil {
		return err
	}
	actions, err := h.reports.ListActions(c.UserContext(), auth.OptionalIdentity(c), id)
	if err != nil {
		return err
	}
	items := make([]dto.ModerationActionResponse, 0, len(actions))
	for i := range actions {
		items = append(items, dto.NewModerationActionResponse(&actions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
