package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/api/dto"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/service"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// AdminUsersHandler exposes account administration.
type AdminUsersHandler struct {
	users *service.UserService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(users *service.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// List GET /api/admin/users.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	query := service.UserQuery{
		SearchTerm: optionalQuery(c, "q"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := splitCSV(c.Query("role")); len(raw) > 0 {
		role := domain.UserRole(raw[0])
		query.Role = &role
	}
	if raw := splitCSV(c.Query("status")); len(raw) > 0 {
		status := domain.UserStatus(raw[0])
		query.Status = &status
	}

	users, err := h.users.List(c.UserContext(), auth.OptionalIdentity(c), query)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateAccess PATCH /api/admin/users/:id.
func (h *AdminUsersHandler) UpdateAccess(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "user")
	if err != nil {
		return err
	}
	var req dto.AccessUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.UpdateAccess(c.UserContext(), auth.OptionalIdentity(c), id, service.AccessUpdate{
		Role:        req.Role,
		Status:      req.Status,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
