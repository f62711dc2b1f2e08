package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

func TestBlockService_Block(t *testing.T) {
	caller := &domain.Identity{SubjectID: "u1", Role: domain.RoleUser}

	t.Run("self", func(t *testing.T) {
		svc := NewBlockService(new(MockBlockRepository), new(MockUserRepository))
		_, err := svc.Block(context.Background(), caller, "u1")
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)
		svc := NewBlockService(new(MockBlockRepository), users)

		_, err := svc.Block(context.Background(), caller, "ghost")
		assert.True(t, apperrors.IsStatus(err, http.StatusNotFound))
	})

	t.Run("already blocked", func(t *testing.T) {
		users := new(MockUserRepository)
		blocks := new(MockBlockRepository)
		users.On("GetByID", mock.Anything, "u2").Return(&domain.User{ID: "u2"}, nil)
		blocks.On("Create", mock.Anything, mock.Anything).Return(&repository.DuplicateError{Constraint: "blocked_users_pair_key"})
		svc := NewBlockService(blocks, users)

		_, err := svc.Block(context.Background(), caller, "u2")
		assert.True(t, apperrors.IsStatus(err, http.StatusConflict))
	})

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		blocks := new(MockBlockRepository)
		users.On("GetByID", mock.Anything, "u2").Return(&domain.User{ID: "u2"}, nil)
		blocks.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.BlockedUser) bool {
			return b.BlockedByID == "u1" && b.UserID == "u2"
		})).Return(nil)
		svc := NewBlockService(blocks, users)

		block, err := svc.Block(context.Background(), caller, " u2 ")
		require.NoError(t, err)
		assert.Equal(t, "u2", block.UserID)
	})
}

func TestBlockService_Unblock(t *testing.T) {
	caller := &domain.Identity{SubjectID: "u1", Role: domain.RoleUser}
	blocks := new(MockBlockRepository)
	blocks.On("Delete", mock.Anything, "u1", "u2").Return(nil)
	blocks.On("Delete", mock.Anything, "u1", "u3").Return(pgx.ErrNoRows)
	svc := NewBlockService(blocks, new(MockUserRepository))

	assert.NoError(t, svc.Unblock(context.Background(), caller, "u2"))
	assert.True(t, apperrors.IsStatus(svc.Unblock(context.Background(), caller, "u3"), http.StatusNotFound))
	assert.True(t, apperrors.IsStatus(svc.Unblock(context.Background(), nil, "u2"), http.StatusUnauthorized))
}
