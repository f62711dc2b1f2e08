package dto

import (
	"time"

	"github.com/souqna/marketplace/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	Password      string  `json:"password"`
	AcceptedTerms *bool   `json:"acceptedTerms"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileUpdateRequest payload for PATCH /api/users/me.
type ProfileUpdateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// AccessUpdateRequest payload for PATCH /api/admin/users/:id.
type AccessUpdateRequest struct {
	Role        *domain.UserRole            `json:"role"`
	Status      *domain.UserStatus          `json:"status"`
	Permissions *domain.PermissionOverrides `json:"permissions"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public projection of an account. Password hashes never leave the service.
type UserResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           *string              `json:"phone"`
	Role            domain.UserRole      `json:"role"`
	Status          domain.UserStatus    `json:"status"`
	Permissions     domain.PermissionSet `json:"permissions"`
	TermsAcceptedAt *time.Time           `json:"termsAcceptedAt,omitempty"`
	TermsVersion    *string              `json:"termsVersion,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		Status:          user.Status,
		Permissions:     domain.PermissionsFor(user),
		TermsAcceptedAt: user.TermsAcceptedAt,
		TermsVersion:    user.TermsVersion,
		CreatedAt:       user.CreatedAt,
	}
}

// BlockRequest payload for POST /api/blocks.
type BlockRequest struct {
	UserID string `json:"userId"`
}

// BlockResponse describes a block edge owned by the caller.
type BlockResponse struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
