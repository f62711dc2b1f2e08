package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqna/marketplace/internal/domain"
)

// ModerationActionRepository reads the moderation audit trail. Rows are written
// by ReportRepository.UpdateWithAction and never modified.
type ModerationActionRepository interface {
	ListByReport(ctx context.Context, reportID string) ([]domain.ModerationAction, error)
}

type moderationActionRepository struct {
	pool *pgxpool.Pool
}

// NewModerationActionRepository builds repository.
func NewModerationActionRepository(pool *pgxpool.Pool) ModerationActionRepository {
	return &moderationActionRepository{pool: pool}
}

func insertModerationAction(ctx context.Context, q querier, action *domain.ModerationAction) error {
	const query = `
        INSERT INTO moderation_actions (report_id, moderator_id, action_type, target_type, target_id, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		action.ReportID,
		action.ModeratorID,
		action.ActionType,
		action.TargetType,
		action.TargetID,
		action.Notes,
	).Scan(&action.ID, &action.CreatedAt)
}

func (r *moderationActionRepository) ListByReport(ctx context.Context, reportID string) ([]domain.ModerationAction, error) {
	const query = `
        SELECT id, report_id, moderator_id, action_type, target_type, target_id, notes, created_at
        FROM moderation_actions WHERE report_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ModerationAction
	for rows.Next() {
		var action domain.ModerationAction
		if err := rows.Scan(
			&action.ID,
			&action.ReportID,
			&action.ModeratorID,
			&action.ActionType,
			&action.TargetType,
			&action.TargetID,
			&action.Notes,
			&action.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, action)
	}
	return result, rows.Err()
}
