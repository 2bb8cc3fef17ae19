package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Repository reads aggregates straight from PostgreSQL. The dashboard has
// no tables of its own; everything is derived from orders, reservations
// and the inventory ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RevenueInRange sums totalAmount over all orders in the range and counts
// them, regardless of payment status.
func (r *Repository) RevenueInRange(ctx context.Context, rng shared.DateRange) (revenue, count int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2`,
		rng.Start, rng.End).Scan(&revenue, &count)
	return revenue, count, err
}

// RevenueByDay groups unconditional order revenue per calendar day,
// ascending.
func (r *Repository) RevenueByDay(ctx context.Context, rng shared.DateRange) ([]DayRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at::date AS day, SUM(total_amount)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day`,
		rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRevenue
	for rows.Next() {
		var day time.Time
		var revenue int64
		if err := rows.Scan(&day, &revenue); err != nil {
			return nil, err
		}
		out = append(out, DayRevenue{Date: day.Format("2006-01-02"), Revenue: revenue})
	}
	return out, rows.Err()
}

// PaidRevenueInRange sums totalAmount over paid orders only.
func (r *Repository) PaidRevenueInRange(ctx context.Context, rng shared.DateRange) (int64, error) {
	var revenue int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2 AND payment_status = 'paid'`,
		rng.Start, rng.End).Scan(&revenue)
	return revenue, err
}

// PaidOrderCountInRange counts paid orders in the range.
func (r *Repository) PaidOrderCountInRange(ctx context.Context, rng shared.DateRange) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2 AND payment_status = 'paid'`,
		rng.Start, rng.End).Scan(&count)
	return count, err
}

// ImportCostInRange sums ledger import totals in the range.
func (r *Repository) ImportCostInRange(ctx context.Context, rng shared.DateRange) (int64, error) {
	var cost int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM inventory_transactions
		WHERE tx_type = 'import' AND created_at >= $1 AND created_at <= $2`,
		rng.Start, rng.End).Scan(&cost)
	return cost, err
}

// ReservationCountInRange counts bookings whose reserved date falls in the
// range.
func (r *Repository) ReservationCountInRange(ctx context.Context, rng shared.DateRange) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM reservations
		WHERE reserved_date >= $1 AND reserved_date <= $2`,
		rng.Start, rng.End).Scan(&count)
	return count, err
}

// TopItems ranks dishes by quantity sold across order lines in the range.
// Ties break by revenue, then name, so the ordering is deterministic.
func (r *Repository) TopItems(ctx context.Context, rng shared.DateRange, limit int) ([]TopItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.menu_item_id, oi.name, SUM(oi.quantity) AS sold, SUM(oi.quantity * oi.price) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY oi.menu_item_id, oi.name
		ORDER BY sold DESC, revenue DESC, oi.name
		LIMIT $3`,
		rng.Start, rng.End, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopItem
	for rows.Next() {
		var item TopItem
		if err := rows.Scan(&item.ID, &item.Name, &item.QuantitySold, &item.Revenue); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
