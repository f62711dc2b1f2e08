package dto

import (
	"time"

	"github.com/souqna/marketplace/internal/domain"
)

// SettingsPatchRequest payload for PATCH /api/admin/settings.
type SettingsPatchRequest struct {
	AutoApprove        *bool `json:"autoApprove"`
	AllowRegistrations *bool `json:"allowRegistrations"`
	MaxProductsPerUser *int  `json:"maxProductsPerUser"`
	MaintenanceMode    *bool `json:"maintenanceMode"`
}

// SettingsResponse is the admin view of the settings row.
type SettingsResponse struct {
	AutoApprove        bool      `json:"autoApprove"`
	AllowRegistrations bool      `json:"allowRegistrations"`
	MaxProductsPerUser int       `json:"maxProductsPerUser"`
	MaintenanceMode    bool      `json:"maintenanceMode"`
	UpdatedAt          time.Time `json:"updatedAt"`
	UpdatedBy          *string   `json:"updatedBy"`
}

// NewSettingsResponse maps the settings row.
func NewSettingsResponse(s domain.AppSettings) SettingsResponse {
	return SettingsResponse{
		AutoApprove:        s.AutoApprove,
		AllowRegistrations: s.AllowRegistrations,
		MaxProductsPerUser: s.MaxProductsPerUser,
		MaintenanceMode:    s.MaintenanceMode,
		UpdatedAt:          s.UpdatedAt,
		UpdatedBy:          s.UpdatedBy,
	}
}

// PublicSettingsResponse is exposed to anonymous clients.
type PublicSettingsResponse struct {
	AllowRegistrations bool `json:"allowRegistrations"`
	MaintenanceMode    bool `json:"maintenanceMode"`
}
