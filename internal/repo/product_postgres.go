package repo

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strconv"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

const productsSchema = `CREATE TABLE IF NOT EXISTS products (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	price    DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS products_name_idx ON products (name)`

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// EnsureSchema creates the products table when it does not exist yet.
func (r *PostgresProductRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, productsSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `INSERT INTO products (name, quantity, price) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, p.Name, p.Quantity, p.Price).Scan(&id); err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return p, nil
}

func (r *PostgresProductRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	query := `DELETE FROM products WHERE id = (SELECT id FROM products WHERE name = $1 ORDER BY id LIMIT 1)`

	res, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *PostgresProductRepository) All(ctx context.Context) iter.Seq2[models.Product, error] {
	return r.query(ctx, ProductFilter{})
}

func (r *PostgresProductRepository) Search(ctx context.Context, prefix string) iter.Seq2[models.Product, error] {
	return r.query(ctx, ProductFilter{NamePrefix: prefix})
}

func (r *PostgresProductRepository) LowStock(ctx context.Context, threshold int) iter.Seq2[models.Product, error] {
	return r.query(ctx, ProductFilter{MaxQty: &threshold})
}

func (r *PostgresProductRepository) query(ctx context.Context, pf ProductFilter) iter.Seq2[models.Product, error] {
	conditions, args := filterConditions(pf, 1)
	query := `SELECT id, name, quantity, price FROM products WHERE 1=1` + conditions + ` ORDER BY id`

	return func(yield func(models.Product, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(models.Product{}, fmt.Errorf("failed to query products: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				p  models.Product
				id int64
			)
			if err := rows.Scan(&id, &p.Name, &p.Quantity, &p.Price); err != nil {
				yield(models.Product{}, fmt.Errorf("failed to scan product: %w", err))
				return
			}
			p.ID = strconv.FormatInt(id, 10)
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Product{}, fmt.Errorf("failed to read products: %w", err))
		}
	}
}

func (r *PostgresProductRepository) UpdateQuantity(ctx context.Context, pattern string, quantity int, mode UpdateMode) (int64, error) {
	pf := ProductFilter{NameContains: pattern}

	if mode == UpdateUnique {
		var n int
		conditions, args := filterConditions(pf, 1)
		countQuery := `SELECT COUNT(*) FROM (SELECT 1 FROM products WHERE 1=1` + conditions + ` LIMIT 2) m`
		if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to count products: %w", err)
		}
		if n > 1 {
			return 0, ErrAmbiguousMatch
		}
	}

	conditions, args := filterConditions(pf, 2)
	var query string
	if mode == UpdateAll {
		query = `UPDATE products SET quantity = $1 WHERE 1=1` + conditions
	} else {
		query = `UPDATE products SET quantity = $1 WHERE id = (SELECT id FROM products WHERE 1=1` +
			conditions + ` ORDER BY id LIMIT 1)`
	}

	res, err := r.db.ExecContext(ctx, query, append([]any{quantity}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to update quantity: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return 0, ErrProductNotFound
	}
	return rowsAffected, nil
}

func (r *PostgresProductRepository) Totals(ctx context.Context) (Totals, error) {
	query := `SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * price), 0) FROM products`

	var t Totals
	if err := r.db.QueryRowContext(ctx, query).Scan(&t.Quantity, &t.Value); err != nil {
		return Totals{}, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	return t, nil
}

// filterConditions renders pf as " AND ..." clauses whose placeholders start at argIdx.
func filterConditions(pf ProductFilter, argIdx int) (string, []any) {
	query := ""
	args := []any{}

	if like := pf.likePattern(); like != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d ESCAPE '\'`, argIdx)
		args = append(args, like)
		argIdx++
	}
	if pf.MaxQty != nil {
		query += fmt.Sprintf(" AND quantity <= $%d", argIdx)
		args = append(args, *pf.MaxQty)
		argIdx++
	}

	return query, args
}
