package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqna/marketplace/internal/domain"
)

// ConstraintOpenReport names the partial unique index over open reports.
const ConstraintOpenReport = "content_reports_open_unique"

// ReportFilter captures report search parameters.
type ReportFilter struct {
	ReportedByID *string
	Statuses     []domain.ReportStatus
	Priorities   []domain.ReportPriority
	ContentType  *domain.ContentType
	ContentID    *string
	Limit        int
	Offset       int
}

// ReportRepository encapsulates content report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.ContentReport) error
	GetByID(ctx context.Context, id string) (*domain.ContentReport, error)
	HasOpenReport(ctx context.Context, reporterID string, contentType domain.ContentType, contentID string) (bool, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.ContentReport, error)
	Update(ctx context.Context, report *domain.ContentReport) error
	// UpdateWithAction persists the report and appends the audit row in one transaction.
	UpdateWithAction(ctx context.Context, report *domain.ContentReport, action *domain.ModerationAction) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `id, content_type, content_id, reported_by_id, reason, description, priority, status,
               reviewed_by_id, reviewed_at, created_at, updated_at`

func (r *reportRepository) Create(ctx context.Context, report *domain.ContentReport) error {
	const query = `
        INSERT INTO content_reports (content_type, content_id, reported_by_id, reason, description, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		report.ContentType,
		report.ContentID,
		report.ReportedByID,
		report.Reason,
		report.Description,
		report.Priority,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	return mapWriteError(err)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.ContentReport, error) {
	query := `SELECT ` + reportColumns + ` FROM content_reports WHERE id=$1`
	return scanReport(r.pool.QueryRow(ctx, query, id))
}

func (r *reportRepository) HasOpenReport(ctx context.Context, reporterID string, contentType domain.ContentType, contentID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM content_reports
            WHERE reported_by_id=$1 AND content_type=$2 AND content_id=$3
              AND status IN ('PENDING','REVIEWING'))`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, reporterID, contentType, contentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.ContentReport, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReportedByID != nil {
		args = append(args, *filter.ReportedByID)
		clauses = append(clauses, fmt.Sprintf("reported_by_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ContentType != nil {
		args = append(args, *filter.ContentType)
		clauses = append(clauses, fmt.Sprintf("content_type=$%d", len(args)))
	}
	if filter.ContentID != nil {
		args = append(args, *filter.ContentID)
		clauses = append(clauses, fmt.Sprintf("content_id=$%d", len(args)))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM content_reports WHERE %s
        ORDER BY CASE priority WHEN 'CRITICAL' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END, created_at ASC
        LIMIT %d OFFSET %d`, reportColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ContentReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *report)
	}
	return result, rows.Err()
}

func (r *reportRepository) Update(ctx context.Context, report *domain.ContentReport) error {
	return updateReport(ctx, r.pool, report, false)
}

func (r *reportRepository) UpdateWithAction(ctx context.Context, report *domain.ContentReport, action *domain.ModerationAction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// a report is closed at most once, so only one disposition row can be written
	if err := updateReport(ctx, tx, report, true); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReportClosed
		}
		return err
	}
	if action != nil {
		if err := insertModerationAction(ctx, tx, action); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func updateReport(ctx context.Context, q querier, report *domain.ContentReport, onlyOpen bool) error {
	query := `
        UPDATE content_reports SET priority=$1, status=$2, reviewed_by_id=$3, reviewed_at=$4, updated_at=NOW()
        WHERE id=$5`
	if onlyOpen {
		query += ` AND status IN ('PENDING','REVIEWING')`
	}
	query += ` RETURNING updated_at`
	return q.QueryRow(ctx, query,
		report.Priority,
		report.Status,
		report.ReviewedByID,
		report.ReviewedAt,
		report.ID,
	).Scan(&report.UpdatedAt)
}

func scanReport(row pgx.Row) (*domain.ContentReport, error) {
	var report domain.ContentReport
	if err := row.Scan(
		&report.ID,
		&report.ContentType,
		&report.ContentID,
		&report.ReportedByID,
		&report.Reason,
		&report.Description,
		&report.Priority,
		&report.Status,
		&report.ReviewedByID,
		&report.ReviewedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
