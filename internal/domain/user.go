package domain

import "time"

// UserRole is the single role held by a user.
type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleSeller    UserRole = "SELLER"
	RoleShopOwner UserRole = "SHOP_OWNER"
	RoleAdmin     UserRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleShopOwner, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

// PermissionOverrides holds per-user capability flags. A nil flag defers to the role default.
type PermissionOverrides struct {
	CanManageProducts *bool `json:"canManageProducts,omitempty"`
	CanManageUsers    *bool `json:"canManageUsers,omitempty"`
	CanViewReports    *bool `json:"canViewReports,omitempty"`
	CanManageOrders   *bool `json:"canManageOrders,omitempty"`
	CanManageShop     *bool `json:"canManageShop,omitempty"`
}

// User is a marketplace account.
type User struct {
	ID              string
	Name            string
	Email           string
	Phone           *string
	PasswordHash    string
	Role            UserRole
	Status          UserStatus
	Permissions     PermissionOverrides
	TermsAcceptedAt *time.Time
	TermsVersion    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// BlockedUser is a directed block edge: BlockedByID hides UserID.
type BlockedUser struct {
	ID          string
	BlockedByID string
	UserID      string
	CreatedAt   time.Time
}
