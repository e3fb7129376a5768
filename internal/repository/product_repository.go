package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront/internal/domain"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, price, category, vendor_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Category,
		product.VendorID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return mapWriteError(err)
}

// Update writes the mutable fields. vendor_id is never written.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, price=$2, category=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Category,
		product.ID,
	).Scan(&product.UpdatedAt)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, name, price, category, vendor_id, created_at, updated_at
        FROM products WHERE id=$1`
	var product domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.VendorID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	where, args := buildProductWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT id, name, price, category, vendor_id, created_at, updated_at
             FROM products WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) Count(ctx context.Context, filter ProductFilter) (int, error) {
	where, args := buildProductWhere(filter)
	var total int
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM products WHERE %s`, where), args...).Scan(&total)
	return total, err
}

func buildProductWhere(filter ProductFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		clauses = append(clauses, fmt.Sprintf("vendor_id=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filter.Search))) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(category) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	result := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Category,
			&product.VendorID,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}
