package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/api/dto"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/service"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// SettingsHandler serves the marketplace settings.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Public GET /api/settings/public.
func (h *SettingsHandler) Public(c *fiber.Ctx) error {
	public, err := h.settings.Public(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PublicSettingsResponse{
		AllowRegistrations: public.AllowRegistrations,
		MaintenanceMode:    public.MaintenanceMode,
	}})
}

// Get GET /api/admin/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(settings)})
}

// Update PATCH /api/admin/settings.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.SettingsPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Update(c.UserContext(), auth.OptionalIdentity(c), service.SettingsPatch{
		AutoApprove:        req.AutoApprove,
		AllowRegistrations: req.AllowRegistrations,
		MaxProductsPerUser: req.MaxProductsPerUser,
		MaintenanceMode:    req.MaintenanceMode,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSettingsResponse(settings)})
}
