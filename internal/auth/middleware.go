package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

const (
	identityKey = "auth_identity"

	// LegacyTokenHeader is accepted for clients that cannot set Authorization.
	LegacyTokenHeader = "X-Access-Token"
	// TokenQueryParam is the last-resort credential location.
	TokenQueryParam = "token"
)

// AuthMiddleware resolves bearer credentials into caller identities.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// extractToken returns the first credential present, in priority order:
// Authorization bearer header, legacy header, query string.
func extractToken(c *fiber.Ctx) string {
	if header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if legacy := strings.TrimSpace(c.Get(LegacyTokenHeader)); legacy != "" {
		return strings.TrimPrefix(legacy, "Bearer ")
	}
	return strings.TrimSpace(c.Query(TokenQueryParam))
}

// Resolve returns the verified identity for the request, or nil.
func (m *AuthMiddleware) Resolve(c *fiber.Ctx) *domain.Identity {
	raw := extractToken(c)
	if raw == "" {
		return nil
	}
	claims, status := m.tokens.Verify(raw)
	if status != TokenValid {
		return nil
	}
	return claims.Identity()
}

// Authenticate attaches an identity when a valid credential is present but never rejects.
func (m *AuthMiddleware) Authenticate(c *fiber.Ctx) error {
	if identity := m.Resolve(c); identity != nil {
		c.Locals(identityKey, identity)
	}
	return c.Next()
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity := m.Resolve(c)
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// RequireLiveRole reloads the caller's user row and checks the persisted role and status,
// closing the staleness window of claims embedded in the credential.
func (m *AuthMiddleware) RequireLiveRole(allowed ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		user, err := m.users.GetByID(c.UserContext(), identity.SubjectID)
		if err != nil {
			if apperrors.IsStatus(err, fiber.StatusNotFound) {
				return apperrors.NewUnauthorized("authentication required")
			}
			return apperrors.MapError(err)
		}
		if !user.IsActive() {
			return apperrors.NewForbidden("account suspended")
		}
		live := &domain.Identity{SubjectID: user.ID, Email: user.Email, Role: user.Role}
		if err := RequireRole(live, allowed...); err != nil {
			return err
		}
		c.Locals(identityKey, live)
		return c.Next()
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

// OptionalIdentity returns the caller identity or nil for anonymous requests.
func OptionalIdentity(c *fiber.Ctx) *domain.Identity {
	identity, _ := IdentityFromContext(c)
	return identity
}
