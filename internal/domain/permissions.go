package domain

// Capability is a single permission flag.
type Capability string

const (
	CapManageProducts Capability = "canManageProducts"
	CapManageUsers    Capability = "canManageUsers"
	CapViewReports    Capability = "canViewReports"
	CapManageOrders   Capability = "canManageOrders"
	CapManageShop     Capability = "canManageShop"
)

// PermissionSet is the effective capability set of a user.
type PermissionSet map[Capability]bool

// Has reports whether the set grants c.
func (p PermissionSet) Has(c Capability) bool {
	return p[c]
}

var roleDefaults = map[UserRole][]Capability{
	RoleAdmin:     {CapManageProducts, CapManageUsers, CapViewReports, CapManageOrders, CapManageShop},
	RoleShopOwner: {CapManageShop, CapManageOrders},
	RoleSeller:    {CapManageOrders},
	RoleUser:      {},
}

// DefaultPermissions returns the capability set implied by a role alone.
func DefaultPermissions(role UserRole) PermissionSet {
	set := PermissionSet{
		CapManageProducts: false,
		CapManageUsers:    false,
		CapViewReports:    false,
		CapManageOrders:   false,
		CapManageShop:     false,
	}
	for _, c := range roleDefaults[role] {
		set[c] = true
	}
	return set
}

// PermissionsFor resolves a user's effective capabilities. Explicit flags win over role defaults.
func PermissionsFor(user *User) PermissionSet {
	if user == nil {
		return PermissionSet{}
	}
	set := DefaultPermissions(user.Role)
	apply := func(c Capability, flag *bool) {
		if flag != nil {
			set[c] = *flag
		}
	}
	apply(CapManageProducts, user.Permissions.CanManageProducts)
	apply(CapManageUsers, user.Permissions.CanManageUsers)
	apply(CapViewReports, user.Permissions.CanViewReports)
	apply(CapManageOrders, user.Permissions.CanManageOrders)
	apply(CapManageShop, user.Permissions.CanManageShop)
	return set
}
