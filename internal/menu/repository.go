package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Repository persists menu items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, description, price, cost_price, category, image, available, popular, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.CostPrice, &it.Category, &it.Image, &it.Available, &it.Popular, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

// Get loads a single dish.
func (r *Repository) Get(ctx context.Context, id string) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanItem(row)
}

// List returns dishes matching the filter, ordered by category then name.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Item, error) {
	sql := `SELECT ` + itemColumns + ` FROM menu_items WHERE 1=1`
	args := []any{}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		sql += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.AvailableOnly {
		sql += " AND available"
	}
	if filter.PopularOnly {
		sql += " AND popular"
	}
	sql += " ORDER BY category, name"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a new dish.
func (r *Repository) Create(ctx context.Context, it Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO menu_items (id, name, description, price, cost_price, category, image, available, popular, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		it.ID, it.Name, it.Description, it.Price, it.CostPrice, it.Category, it.Image, it.Available, it.Popular, it.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.Validationf("menu item %q already exists", it.Name)
		}
		return fmt.Errorf("menu: create: %w", err)
	}
	return nil
}

// Update writes all mutable fields.
func (r *Repository) Update(ctx context.Context, it Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, cost_price = $5, category = $6, image = $7, available = $8, popular = $9, updated_at = NOW()
		WHERE id = $1`,
		it.ID, it.Name, it.Description, it.Price, it.CostPrice, it.Category, it.Image, it.Available, it.Popular)
	if err != nil {
		return fmt.Errorf("menu: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a dish. Order lines keep their snapshots.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("menu: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
