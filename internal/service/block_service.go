package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// BlockService manages user-to-user blocks.
type BlockService struct {
	blocks repository.BlockRepository
	users  repository.UserRepository
}

// NewBlockService constructs the service.
func NewBlockService(blocks repository.BlockRepository, users repository.UserRepository) *BlockService {
	return &BlockService{blocks: blocks, users: users}
}

// Block hides userID's content from the caller and the caller's from userID.
func (s *BlockService) Block(ctx context.Context, identity *domain.Identity, userID string) (*domain.BlockedUser, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}
	if userID == identity.SubjectID {
		return nil, apperrors.NewValidationError("you cannot block yourself", nil)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	block := &domain.BlockedUser{BlockedByID: identity.SubjectID, UserID: userID}
	if err := s.blocks.Create(ctx, block); err != nil {
		if _, dup := duplicateConstraint(err); dup {
			return nil, apperrors.NewConflict("user already blocked", nil)
		}
		return nil, err
	}
	return block, nil
}

// Unblock removes the caller's block on userID.
func (s *BlockService) Unblock(ctx context.Context, identity *domain.Identity, userID string) error {
	if err := auth.RequireRole(identity); err != nil {
		return err
	}
	if err := s.blocks.Delete(ctx, identity.SubjectID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("block", nil)
		}
		return err
	}
	return nil
}

// List returns the users the caller has blocked.
func (s *BlockService) List(ctx context.Context, identity *domain.Identity) ([]domain.BlockedUser, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	return s.blocks.ListByBlocker(ctx, identity.SubjectID)
}
