package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lotuskitchen/lotuskitchen/internal/platform/db"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside a ledger transaction.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, id string) (Item, error)
	SetItemQuantity(ctx context.Context, id string, quantity int64) error
	InsertTransaction(ctx context.Context, t Transaction) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const itemColumns = `id, name, unit, quantity, cost_per_unit, supplier, category, minimum_stock, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Unit, &it.Quantity, &it.CostPerUnit, &it.Supplier, &it.Category, &it.MinimumStock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

// GetItem loads a single item.
func (r *Repository) GetItem(ctx context.Context, id string) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	return scanItem(row)
}

// ListItems returns all items ordered by category then name.
func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY category, name`)
}

// ListLowStock returns items at or below their minimum stock, ordered by
// category then name.
func (r *Repository) ListLowStock(ctx context.Context) ([]Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE quantity <= minimum_stock ORDER BY category, name`)
}

func (r *Repository) queryItems(ctx context.Context, sql string, args ...any) ([]Item, error) {
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

// CreateItem inserts a new item.
func (r *Repository) CreateItem(ctx context.Context, it Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inventory_items (id, name, unit, quantity, cost_per_unit, supplier, category, minimum_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		it.ID, it.Name, it.Unit, it.Quantity, it.CostPerUnit, it.Supplier, it.Category, it.MinimumStock, it.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.Validationf("inventory item %q already exists", it.Name)
		}
		return fmt.Errorf("inventory: create item: %w", err)
	}
	return nil
}

// UpdateItem writes the mutable item fields. Quantity is untouched.
func (r *Repository) UpdateItem(ctx context.Context, it Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inventory_items
		SET name = $2, unit = $3, cost_per_unit = $4, supplier = $5, category = $6, minimum_stock = $7, updated_at = NOW()
		WHERE id = $1`,
		it.ID, it.Name, it.Unit, it.CostPerUnit, it.Supplier, it.Category, it.MinimumStock)
	if err != nil {
		return fmt.Errorf("inventory: update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteItem removes an item. Ledger entries keep their name snapshots.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("inventory: delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListTransactions returns ledger entries newest first, with order codes
// resolved for export entries that reference an order.
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	sql := `
		SELECT t.id, t.tx_type, t.total_amount, t.note, t.supplier, COALESCE(t.order_id::text, ''), COALESCE(o.order_code, ''), COALESCE(t.created_by::text, ''), t.created_at
		FROM inventory_transactions t
		LEFT JOIN orders o ON o.id = t.order_id
		WHERE 1=1`
	args := []any{}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		sql += fmt.Sprintf(" AND t.tx_type = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		sql += fmt.Sprintf(" AND t.created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		sql += fmt.Sprintf(" AND t.created_at <= $%d", len(args))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		sql += fmt.Sprintf(" AND t.order_id = $%d", len(args))
	}
	sql += " ORDER BY t.created_at DESC"
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

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.TotalAmount, &t.Note, &t.Supplier, &t.OrderID, &t.OrderCode, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *Repository) attachLines(ctx context.Context, txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ids := make([]string, len(txs))
	index := make(map[string]int, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
		index[t.ID] = i
	}
	rows, err := r.pool.Query(ctx, `
		SELECT tx_id, item_id, name, quantity, cost
		FROM inventory_transaction_lines
		WHERE tx_id = ANY($1)
		ORDER BY tx_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var txID string
		var line TransactionLine
		if err := rows.Scan(&txID, &line.ItemID, &line.Name, &line.Quantity, &line.Cost); err != nil {
			return err
		}
		i := index[txID]
		txs[i].Lines = append(txs[i].Lines, line)
	}
	return rows.Err()
}

// GetItemForUpdate locks the item row for the duration of the transaction.
func (r *txRepo) GetItemForUpdate(ctx context.Context, id string) (Item, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
	return scanItem(row)
}

// SetItemQuantity writes the new on-hand count for a locked item.
func (r *txRepo) SetItemQuantity(ctx context.Context, id string, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("inventory: refusing to persist negative quantity %d for item %s", quantity, id)
	}
	tag, err := r.tx.Exec(ctx, `UPDATE inventory_items SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertTransaction persists a ledger entry header and its lines.
func (r *txRepo) InsertTransaction(ctx context.Context, t Transaction) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO inventory_transactions (id, tx_type, total_amount, note, supplier, order_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,'')::uuid, NULLIF($7,'')::uuid, $8)`,
		t.ID, string(t.Type), t.TotalAmount, t.Note, t.Supplier, t.OrderID, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inventory: insert transaction: %w", err)
	}
	for i, line := range t.Lines {
		_, err := r.tx.Exec(ctx, `
			INSERT INTO inventory_transaction_lines (tx_id, item_id, name, quantity, cost, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, line.ItemID, line.Name, line.Quantity, line.Cost, i)
		if err != nil {
			return fmt.Errorf("inventory: insert transaction line: %w", err)
		}
	}
	return nil
}
