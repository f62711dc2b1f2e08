package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/souqna/marketplace/internal/domain"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

func TestSettingsService_CachesCurrent(t *testing.T) {
	repo := new(MockSettingsRepository)
	stored := domain.DefaultSettings()
	repo.On("Get", mock.Anything).Return(&stored, nil)

	svc := NewSettingsService(repo, time.Minute)
	for i := 0; i < 3; i++ {
		settings, err := svc.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 10, settings.MaxProductsPerUser)
	}
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSettingsService_NoCacheWhenTTLDisabled(t *testing.T) {
	repo := new(MockSettingsRepository)
	stored := domain.DefaultSettings()
	repo.On("Get", mock.Anything).Return(&stored, nil)

	svc := NewSettingsService(repo, 0)
	_, _ = svc.Current(context.Background())
	_, _ = svc.Current(context.Background())
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestSettingsService_UpdateInvalidatesCache(t *testing.T) {
	repo := new(MockSettingsRepository)
	stored := domain.DefaultSettings()
	repo.On("Get", mock.Anything).Return(&stored, nil)
	repo.On("Save", mock.Anything, &stored).Return(nil)

	svc := NewSettingsService(repo, time.Minute)
	before, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, before.MaintenanceMode)

	admin := &domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin}
	updated, err := svc.Update(context.Background(), admin, SettingsPatch{
		MaintenanceMode:    boolPtr(true),
		MaxProductsPerUser: func() *int { v := 0; return &v }(),
	})
	require.NoError(t, err)
	assert.True(t, updated.MaintenanceMode)
	assert.Equal(t, 0, updated.MaxProductsPerUser)
	assert.True(t, updated.AllowRegistrations, "fields absent from the patch are kept")
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "admin-1", *updated.UpdatedBy)

	after, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, after.MaintenanceMode)

	public, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PublicSettings{AllowRegistrations: true, MaintenanceMode: true}, public)
}

func TestSettingsService_UpdateGuards(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewSettingsService(repo, time.Minute)

	_, err := svc.Update(context.Background(), nil, SettingsPatch{})
	assert.True(t, apperrors.IsStatus(err, http.StatusUnauthorized))

	caller := &domain.Identity{SubjectID: "u1", Role: domain.RoleSeller}
	_, err = svc.Update(context.Background(), caller, SettingsPatch{MaintenanceMode: boolPtr(true)})
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))

	admin := &domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin}
	negative := -1
	_, err = svc.Update(context.Background(), admin, SettingsPatch{MaxProductsPerUser: &negative})
	assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
