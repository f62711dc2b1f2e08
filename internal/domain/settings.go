package domain

import "time"

// AppSettings is the process-wide marketplace configuration row.
type AppSettings struct {
	AutoApprove        bool
	AllowRegistrations bool
	MaxProductsPerUser int
	MaintenanceMode    bool
	UpdatedAt          time.Time
	UpdatedBy          *string
}

// DefaultSettings is used when the settings row has not been created yet.
func DefaultSettings() AppSettings {
	return AppSettings{
		AutoApprove:        false,
		AllowRegistrations: true,
		MaxProductsPerUser: 10,
		MaintenanceMode:    false,
	}
}

// ListingCapReached reports whether an owner with count listings may not add another.
// A cap of zero or less disables the limit.
func (s AppSettings) ListingCapReached(count int) bool {
	return s.MaxProductsPerUser > 0 && count >= s.MaxProductsPerUser
}
