package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqna/marketplace/internal/domain"
)

// SettingsRepository reads and writes the singleton settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.AppSettings, error)
	Save(ctx context.Context, settings *domain.AppSettings) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

// Get returns the stored settings, or the defaults when the row is missing.
func (r *settingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	const query = `
        SELECT auto_approve, allow_registrations, max_products_per_user, maintenance_mode, updated_at, updated_by
        FROM app_settings WHERE id=1`
	var s domain.AppSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.AutoApprove,
		&s.AllowRegistrations,
		&s.MaxProductsPerUser,
		&s.MaintenanceMode,
		&s.UpdatedAt,
		&s.UpdatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the singleton row; last write wins.
func (r *settingsRepository) Save(ctx context.Context, s *domain.AppSettings) error {
	const query = `
        INSERT INTO app_settings (id, auto_approve, allow_registrations, max_products_per_user, maintenance_mode, updated_by, updated_at)
        VALUES (1, $1, $2, $3, $4, $5, NOW())
        ON CONFLICT (id) DO UPDATE SET
            auto_approve=EXCLUDED.auto_approve,
            allow_registrations=EXCLUDED.allow_registrations,
            max_products_per_user=EXCLUDED.max_products_per_user,
            maintenance_mode=EXCLUDED.maintenance_mode,
            updated_by=EXCLUDED.updated_by,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		s.AutoApprove,
		s.AllowRegistrations,
		s.MaxProductsPerUser,
		s.MaintenanceMode,
		s.UpdatedBy,
	).Scan(&s.UpdatedAt)
}
