package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

func delegatedManager() *domain.User {
	return &domain.User{
		ID:          "mgr-1",
		Role:        domain.RoleSeller,
		Status:      domain.UserStatusActive,
		Permissions: domain.PermissionOverrides{CanManageUsers: boolPtr(true)},
	}
}

func TestUserService_ListRequiresCapability(t *testing.T) {
	users := new(MockUserRepository)
	plain := seller()
	mgr := delegatedManager()
	users.On("GetByID", mock.Anything, plain.ID).Return(plain, nil)
	users.On("GetByID", mock.Anything, mgr.ID).Return(mgr, nil)
	users.On("List", mock.Anything, repository.UserFilter{Limit: 5}).Return([]domain.User{*plain}, nil)
	svc := NewUserService(users, nil)

	_, err := svc.List(context.Background(), identityOf(plain), UserQuery{})
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))

	result, err := svc.List(context.Background(), identityOf(mgr), UserQuery{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestUserService_ListRejectsSuspendedManager(t *testing.T) {
	users := new(MockUserRepository)
	mgr := delegatedManager()
	mgr.Status = domain.UserStatusSuspended
	users.On("GetByID", mock.Anything, mgr.ID).Return(mgr, nil)
	svc := NewUserService(users, nil)

	_, err := svc.List(context.Background(), identityOf(mgr), UserQuery{})
	assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
}

func TestUserService_UpdateAccess(t *testing.T) {
	suspended := domain.UserStatusSuspended
	adminRole := domain.RoleAdmin

	t.Run("admin suspends a user", func(t *testing.T) {
		users := new(MockUserRepository)
		admin := adminUser()
		target := seller()
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
		users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		users.On("Update", mock.Anything, target).Return(nil)
		svc := NewUserService(users, nil)

		updated, err := svc.UpdateAccess(context.Background(), identityOf(admin), target.ID, AccessUpdate{Status: &suspended})
		require.NoError(t, err)
		assert.Equal(t, domain.UserStatusSuspended, updated.Status)
	})

	t.Run("manager cannot touch admins or grant admin", func(t *testing.T) {
		users := new(MockUserRepository)
		mgr := delegatedManager()
		admin := adminUser()
		target := seller()
		users.On("GetByID", mock.Anything, mgr.ID).Return(mgr, nil)
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
		users.On("GetByID", mock.Anything, target.ID).Return(target, nil)
		svc := NewUserService(users, nil)

		_, err := svc.UpdateAccess(context.Background(), identityOf(mgr), admin.ID, AccessUpdate{Status: &suspended})
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))

		_, err = svc.UpdateAccess(context.Background(), identityOf(mgr), target.ID, AccessUpdate{Role: &adminRole})
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))

		_, err = svc.UpdateAccess(context.Background(), identityOf(mgr), target.ID, AccessUpdate{
			Permissions: &domain.PermissionOverrides{CanManageUsers: boolPtr(true)},
		})
		assert.True(t, apperrors.IsStatus(err, http.StatusForbidden))
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("own role and status are locked", func(t *testing.T) {
		users := new(MockUserRepository)
		admin := adminUser()
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
		svc := NewUserService(users, nil)

		_, err := svc.UpdateAccess(context.Background(), identityOf(admin), admin.ID, AccessUpdate{Status: &suspended})
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	})

	t.Run("invalid role", func(t *testing.T) {
		users := new(MockUserRepository)
		admin := adminUser()
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
		svc := NewUserService(users, nil)
		bogus := domain.UserRole("ROOT")

		_, err := svc.UpdateAccess(context.Background(), identityOf(admin), "u2", AccessUpdate{Role: &bogus})
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	})
}
