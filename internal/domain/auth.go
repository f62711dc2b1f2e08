package domain

import "time"

// Identity is the verified caller resolved from a credential.
// Role and Email are the values embedded at issuance and may lag the user row.
type Identity struct {
	SubjectID string
	Email     string
	Role      UserRole
}

// IsAdmin reports whether the credential carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Token represents issued credential metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      UserRole
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PasswordResetToken is a single-use password reset secret.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
