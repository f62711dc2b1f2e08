package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

const settingsCacheKey = "app"

// SettingsPatch carries a partial settings update.
type SettingsPatch struct {
	AutoApprove        *bool
	AllowRegistrations *bool
	MaxProductsPerUser *int
	MaintenanceMode    *bool
}

// PublicSettings is the projection exposed to anonymous clients.
type PublicSettings struct {
	AllowRegistrations bool
	MaintenanceMode    bool
}

// SettingsService serves the settings singleton through a short-lived cache.
type SettingsService struct {
	repo  repository.SettingsRepository
	cache *expirable.LRU[string, domain.AppSettings]
}

// NewSettingsService builds the service. A non-positive ttl disables caching.
func NewSettingsService(repo repository.SettingsRepository, ttl time.Duration) *SettingsService {
	s := &SettingsService{repo: repo}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, domain.AppSettings](1, nil, ttl)
	}
	return s
}

// Current returns the settings in effect.
func (s *SettingsService) Current(ctx context.Context) (domain.AppSettings, error) {
	if s.cache != nil {
		if settings, ok := s.cache.Get(settingsCacheKey); ok {
			return settings, nil
		}
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.AppSettings{}, err
	}
	if s.cache != nil {
		s.cache.Add(settingsCacheKey, *settings)
	}
	return *settings, nil
}

// Public returns the anonymous projection.
func (s *SettingsService) Public(ctx context.Context) (PublicSettings, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return PublicSettings{}, err
	}
	return PublicSettings{
		AllowRegistrations: settings.AllowRegistrations,
		MaintenanceMode:    settings.MaintenanceMode,
	}, nil
}

// Update applies patch on top of the stored row. Concurrent updates are last-write-wins.
func (s *SettingsService) Update(ctx context.Context, identity *domain.Identity, patch SettingsPatch) (domain.AppSettings, error) {
	if err := auth.RequireRole(identity, domain.RoleAdmin); err != nil {
		return domain.AppSettings{}, err
	}
	if patch.MaxProductsPerUser != nil && *patch.MaxProductsPerUser < 0 {
		return domain.AppSettings{}, apperrors.NewValidationError("maxProductsPerUser must be zero or greater", nil)
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return domain.AppSettings{}, err
	}
	if patch.AutoApprove != nil {
		current.AutoApprove = *patch.AutoApprove
	}
	if patch.AllowRegistrations != nil {
		current.AllowRegistrations = *patch.AllowRegistrations
	}
	if patch.MaxProductsPerUser != nil {
		current.MaxProductsPerUser = *patch.MaxProductsPerUser
	}
	if patch.MaintenanceMode != nil {
		current.MaintenanceMode = *patch.MaintenanceMode
	}
	updatedBy := identity.SubjectID
	current.UpdatedBy = &updatedBy

	if err := s.repo.Save(ctx, current); err != nil {
		return domain.AppSettings{}, err
	}
	if s.cache != nil {
		s.cache.Remove(settingsCacheKey)
	}
	return *current, nil
}
