package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, order_code, customer_name, phone, COALESCE(email, ''), COALESCE(reservation_id::text, ''), total_amount, status, payment_status, payment_method, COALESCE(serve_time, 'epoch'::timestamptz), note, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var serveTime time.Time
	err := row.Scan(&o.ID, &o.OrderCode, &o.CustomerName, &o.Phone, &o.Email, &o.ReservationID, &o.TotalAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &serveTime, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	if serveTime.Unix() != 0 {
		o.ServeTime = serveTime
	}
	return o, nil
}

// Get loads one order with its lines.
func (r *Repository) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// GetByCode loads one order by its public code.
func (r *Repository) GetByCode(ctx context.Context, code string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_code = $1`, code))
	if err != nil {
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

// List returns orders newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sql += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, string(filter.PaymentStatus))
		sql += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		sql += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		sql += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	sql += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByContact returns orders placed under the given email or phone,
// newest first. Customer accounts use it to show their own history.
func (r *Repository) ListByContact(ctx context.Context, email, phone string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE (email = NULLIF($1, '') OR phone = $2)
		ORDER BY created_at DESC
		LIMIT 200`,
		email, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, menu_item_id, name, price, quantity, note
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var line Line
		if err := rows.Scan(&orderID, &line.MenuItemID, &line.Name, &line.Price, &line.Quantity, &line.Note); err != nil {
			return err
		}
		i := index[orderID]
		orders[i].Lines = append(orders[i].Lines, line)
	}
	return rows.Err()
}

// Create inserts the order header and its lines.
func (r *Repository) Create(ctx context.Context, o Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, order_code, customer_name, phone, email, reservation_id, total_amount, status, payment_status, payment_method, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,'')::uuid, $7, $8, $9, $10, $11, $12, $12)`,
		o.ID, o.OrderCode, o.CustomerName, o.Phone, o.Email, o.ReservationID, o.TotalAmount, string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod), o.Note, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("orders: create: %w", err)
	}
	for i, line := range o.Lines {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, note, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.ID, line.MenuItemID, line.Name, line.Price, line.Quantity, line.Note, i)
		if err != nil {
			return fmt.Errorf("orders: create line: %w", err)
		}
	}
	return nil
}

// Update writes the mutable order fields.
func (r *Repository) Update(ctx context.Context, o Order) error {
	var serveTime any
	if !o.ServeTime.IsZero() {
		serveTime = o.ServeTime
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, payment_method = $4, serve_time = $5, note = $6, updated_at = NOW()
		WHERE id = $1`,
		o.ID, string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod), serveTime, o.Note)
	if err != nil {
		return fmt.Errorf("orders: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order and, via cascade, its lines.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("orders: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
