package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// UserService exposes account administration.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// UserQuery describes admin user listing filters.
type UserQuery struct {
	Role       *domain.UserRole
	Status     *domain.UserStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// AccessUpdate changes a user's role, status or capability overrides. A nil field is left as is.
type AccessUpdate struct {
	Role        *domain.UserRole
	Status      *domain.UserStatus
	Permissions *domain.PermissionOverrides
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// List returns accounts to admins and holders of canManageUsers.
func (s *UserService) List(ctx context.Context, identity *domain.Identity, query UserQuery) ([]domain.User, error) {
	if _, err := s.manager(ctx, identity); err != nil {
		return nil, err
	}
	return s.users.List(ctx, repository.UserFilter{
		Role:       query.Role,
		Status:     query.Status,
		SearchTerm: query.SearchTerm,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// UpdateAccess edits another account's role, status and capability flags.
func (s *UserService) UpdateAccess(ctx context.Context, identity *domain.Identity, userID string, input AccessUpdate) (*domain.User, error) {
	manager, err := s.manager(ctx, identity)
	if err != nil {
		return nil, err
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status"})
	}
	if userID == manager.ID && (input.Role != nil || input.Status != nil) {
		return nil, apperrors.NewValidationError("you cannot change your own role or status", nil)
	}

	target, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return nil, err
	}

	if manager.Role != domain.RoleAdmin {
		if target.Role == domain.RoleAdmin || (input.Role != nil && *input.Role == domain.RoleAdmin) {
			return nil, apperrors.NewForbidden("only admins can manage admin accounts")
		}
		if input.Permissions != nil && input.Permissions.CanManageUsers != nil {
			return nil, apperrors.NewForbidden("only admins can delegate user management")
		}
	}

	if input.Role != nil {
		target.Role = *input.Role
	}
	if input.Status != nil {
		target.Status = *input.Status
	}
	if input.Permissions != nil {
		target.Permissions = *input.Permissions
	}
	if err := s.users.Update(ctx, target); err != nil {
		return nil, userWriteError(err)
	}
	s.logger.Info("updated user access",
		zap.String("user_id", target.ID),
		zap.String("by", manager.ID),
		zap.String("role", string(target.Role)),
		zap.String("status", string(target.Status)))
	return target, nil
}

// manager loads the caller's live row and requires canManageUsers.
func (s *UserService) manager(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.RequireCapability(identity, domain.CapManageUsers, domain.PermissionsFor(user)); err != nil {
		return nil, err
	}
	return user, nil
}
