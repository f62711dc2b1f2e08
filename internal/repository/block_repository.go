package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqna/marketplace/internal/domain"
)

// BlockRepository stores directed block edges.
type BlockRepository interface {
	Create(ctx context.Context, block *domain.BlockedUser) error
	Delete(ctx context.Context, blockedByID, userID string) error
	// Related reports whether either user blocked the other.
	Related(ctx context.Context, a, b string) (bool, error)
	ListByBlocker(ctx context.Context, blockedByID string) ([]domain.BlockedUser, error)
}

type blockRepository struct {
	pool *pgxpool.Pool
}

// NewBlockRepository builds repository.
func NewBlockRepository(pool *pgxpool.Pool) BlockRepository {
	return &blockRepository{pool: pool}
}

func (r *blockRepository) Create(ctx context.Context, block *domain.BlockedUser) error {
	const query = `
        INSERT INTO blocked_users (blocked_by_id, user_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, block.BlockedByID, block.UserID).Scan(&block.ID, &block.CreatedAt)
	return mapWriteError(err)
}

func (r *blockRepository) Delete(ctx context.Context, blockedByID, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM blocked_users WHERE blocked_by_id=$1 AND user_id=$2`, blockedByID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *blockRepository) Related(ctx context.Context, a, b string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM blocked_users
            WHERE (blocked_by_id=$1 AND user_id=$2) OR (blocked_by_id=$2 AND user_id=$1))`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, a, b).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockedByID string) ([]domain.BlockedUser, error) {
	const query = `
        SELECT id, blocked_by_id, user_id, created_at
        FROM blocked_users WHERE blocked_by_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, blockedByID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BlockedUser
	for rows.Next() {
		var block domain.BlockedUser
		if err := rows.Scan(&block.ID, &block.BlockedByID, &block.UserID, &block.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, block)
	}
	return result, rows.Err()
}
