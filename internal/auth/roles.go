package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/domain"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// RequireRole passes when the identity holds one of the allowed roles.
// An empty allowed list only requires authentication.
func RequireRole(identity *domain.Identity, allowed ...domain.UserRole) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// RequireOwnerOrCapability passes when the identity owns the resource or the permission
// set grants the capability. resourceOwnerID must come from the persisted resource.
func RequireOwnerOrCapability(identity *domain.Identity, resourceOwnerID string, capability domain.Capability, perms domain.PermissionSet) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if resourceOwnerID != "" && identity.SubjectID == resourceOwnerID {
		return nil
	}
	if perms.Has(capability) {
		return nil
	}
	return apperrors.NewForbidden("not allowed to modify this resource")
}

// RequireCapability passes when the permission set grants the capability.
func RequireCapability(identity *domain.Identity, capability domain.Capability, perms domain.PermissionSet) error {
	return RequireOwnerOrCapability(identity, "", capability, perms)
}

// RequireRoles is the route guard form of RequireRole.
func RequireRoles(allowed ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := RequireRole(identity, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
