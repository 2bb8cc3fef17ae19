package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Repository persists reservations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, customer_name, phone, COALESCE(email, ''), reserved_date, reserved_time, people, special_requests, status, table_name, created_at, updated_at`

func scan(row pgx.Row) (Reservation, error) {
	var res Reservation
	err := row.Scan(&res.ID, &res.CustomerName, &res.Phone, &res.Email, &res.Date, &res.Time, &res.People, &res.SpecialRequests, &res.Status, &res.Table, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reservation{}, shared.ErrNotFound
		}
		return Reservation{}, err
	}
	return res, nil
}

// Get loads one reservation.
func (r *Repository) Get(ctx context.Context, id string) (Reservation, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM reservations WHERE id = $1`, id))
}

// List returns reservations matching the filter, soonest slot first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Reservation, error) {
	sql := `SELECT ` + columns + ` FROM reservations WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sql += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.Date.IsZero() {
		args = append(args, filter.Date)
		sql += fmt.Sprintf(" AND reserved_date = $%d::date", len(args))
	}
	sql += " ORDER BY reserved_date, reserved_time"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create inserts a new reservation.
func (r *Repository) Create(ctx context.Context, res Reservation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reservations (id, customer_name, phone, email, reserved_date, reserved_time, people, special_requests, status, table_name, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9, $10, $11, $11)`,
		res.ID, res.CustomerName, res.Phone, res.Email, res.Date, res.Time, res.People, res.SpecialRequests, string(res.Status), res.Table, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("reservations: create: %w", err)
	}
	return nil
}

// Update writes the mutable reservation fields.
func (r *Repository) Update(ctx context.Context, res Reservation) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reservations
		SET reserved_date = $2, reserved_time = $3, people = $4, special_requests = $5, status = $6, table_name = $7, updated_at = NOW()
		WHERE id = $1`,
		res.ID, res.Date, res.Time, res.People, res.SpecialRequests, string(res.Status), res.Table)
	if err != nil {
		return fmt.Errorf("reservations: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a reservation.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reservations: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
