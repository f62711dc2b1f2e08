package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqna/marketplace/internal/domain"
)

// ProductFilter captures listing search parameters.
type ProductFilter struct {
	OwnerID     *string
	Statuses    []domain.ProductStatus
	Category    *string
	ListingType *domain.ListingType
	MinPrice    *float64
	MaxPrice    *float64
	SearchTerm  *string
	HiddenForID *string // exclude owners in a block relation with this user
	Limit       int
	Offset      int
}

// ProductRepository encapsulates listing persistence.
type ProductRepository interface {
	CountActiveByOwner(ctx context.Context, ownerID string) (int, error)
	CreateWithinLimit(ctx context.Context, product *domain.Product, limit int) error
	Update(ctx context.Context, product *domain.Product) error
	UpdateStatus(ctx context.Context, id string, status domain.ProductStatus) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Purge(ctx context.Context, id string) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, owner_id, title, description, price, currency, category, listing_type,
               location, contact_phone, images, status, created_at, updated_at`

func (r *productRepository) CountActiveByOwner(ctx context.Context, ownerID string) (int, error) {
	return countActiveByOwner(ctx, r.pool, ownerID)
}

func countActiveByOwner(ctx context.Context, q querier, ownerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM products WHERE owner_id=$1 AND status <> 'DELETED'`
	var count int
	if err := q.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateWithinLimit inserts the listing while holding a lock on the owner's row, so the
// count and insert cannot interleave with another submission from the same owner.
func (r *productRepository) CreateWithinLimit(ctx context.Context, product *domain.Product, limit int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var ownerID string
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, product.OwnerID).Scan(&ownerID); err != nil {
		return err
	}
	if limit > 0 {
		count, err := countActiveByOwner(ctx, tx, product.OwnerID)
		if err != nil {
			return err
		}
		if count >= limit {
			return ErrListingLimitReached
		}
	}

	const query = `
        INSERT INTO products (owner_id, title, description, price, currency, category, listing_type,
            location, contact_phone, images, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		product.OwnerID,
		product.Title,
		product.Description,
		product.Price,
		product.Currency,
		product.Category,
		product.ListingType,
		product.Location,
		product.ContactPhone,
		product.Images,
		product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return mapWriteError(err)
	}
	return tx.Commit(ctx)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET title=$1, description=$2, price=$3, currency=$4, category=$5, listing_type=$6,
            location=$7, contact_phone=$8, images=$9, status=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.Currency,
		product.Category,
		product.ListingType,
		product.Location,
		product.ContactPhone,
		product.Images,
		product.Status,
		product.ID,
	).Scan(&product.UpdatedAt)
}

func (r *productRepository) UpdateStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) Purge(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.ListingType != nil {
		args = append(args, *filter.ListingType)
		clauses = append(clauses, fmt.Sprintf("listing_type=$%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	if filter.HiddenForID != nil {
		args = append(args, *filter.HiddenForID)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`NOT EXISTS (SELECT 1 FROM blocked_users b
                WHERE (b.blocked_by_id=%s AND b.user_id=products.owner_id)
                   OR (b.blocked_by_id=products.owner_id AND b.user_id=%s))`, placeholder, placeholder))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		productColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.OwnerID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Currency,
		&product.Category,
		&product.ListingType,
		&product.Location,
		&product.ContactPhone,
		&product.Images,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}
