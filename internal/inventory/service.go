package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	ListerPort
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, it Item) error
	UpdateItem(ctx context.Context, it Item) error
	DeleteItem(ctx context.Context, id string) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates downstream aggregate caches after a ledger write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Service is the stock ledger: it owns every change to item quantities and
// writes each change through the append-only transaction store.
type Service struct {
	repo  RepositoryPort
	store *Store
	audit AuditPort
	cache CachePort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, store *Store, audit AuditPort) *Service {
	return &Service{repo: repo, store: store, audit: audit, now: func() time.Time { return time.Now() }}
}

// WithCache attaches a cache to invalidate on ledger writes.
func (s *Service) WithCache(cache CachePort) {
	s.cache = cache
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ApplyImport increments stock for every line and appends an import entry.
// Line cost is quantity times the request unit cost, falling back to the
// item's current costPerUnit when the request omits it. The whole call is
// one transaction: a failing line rolls back every quantity change.
func (s *Service) ApplyImport(ctx context.Context, input ImportInput) (Transaction, error) {
	if len(input.Lines) == 0 {
		return Transaction{}, shared.Validationf("import requires at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return Transaction{}, shared.Validationf("import quantity must be positive")
		}
		if line.UnitCost != nil && *line.UnitCost < 0 {
			return Transaction{}, shared.Validationf("import unit cost must not be negative")
		}
	}

	note := input.Note
	if note == "" {
		note = "stock import"
	}
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := lockItems(ctx, tx, importItemIDs(input.Lines))
		if err != nil {
			return err
		}

		lines := make([]TransactionLine, 0, len(input.Lines))
		var total int64
		for _, line := range input.Lines {
			item := items[line.ItemID]
			unitCost := item.CostPerUnit
			if line.UnitCost != nil {
				unitCost = *line.UnitCost
			}
			cost := line.Quantity * unitCost
			total += cost
			lines = append(lines, TransactionLine{
				ItemID:   item.ID,
				Name:     item.Name,
				Quantity: line.Quantity,
				Cost:     cost,
			})
			item.Quantity += line.Quantity
			items[line.ItemID] = item
		}
		for _, id := range sortedKeys(items) {
			if err := tx.SetItemQuantity(ctx, id, items[id].Quantity); err != nil {
				return err
			}
		}

		entry = Transaction{
			Type:        TransactionImport,
			Lines:       lines,
			TotalAmount: total,
			Note:        note,
			Supplier:    input.Supplier,
			CreatedBy:   input.CreatedBy,
			CreatedAt:   s.now(),
		}
		return s.store.Append(ctx, tx, &entry)
	})
	if err != nil {
		return Transaction{}, err
	}
	s.recordAudit(ctx, input.CreatedBy, entry)
	s.bumpCache(ctx)
	return entry, nil
}

// ApplyExport decrements stock in two phases: every line is validated
// against on-hand quantity before anything moves, so a rejected line
// leaves the whole call without effect. Line cost always comes from the
// item's costPerUnit to keep the audit trail trustworthy.
func (s *Service) ApplyExport(ctx context.Context, input ExportInput) (Transaction, error) {
	if len(input.Lines) == 0 {
		return Transaction{}, shared.Validationf("export requires at least one line")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return Transaction{}, shared.Validationf("export quantity must be positive")
		}
	}

	note := input.Note
	if note == "" {
		note = "stock export"
	}
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := lockItems(ctx, tx, exportItemIDs(input.Lines))
		if err != nil {
			return err
		}

		// Phase one: validate every line, aggregating repeats of the same
		// item, before any quantity is touched.
		requested := make(map[string]int64, len(items))
		for _, line := range input.Lines {
			requested[line.ItemID] += line.Quantity
		}
		for _, id := range sortedKeys(items) {
			item := items[id]
			if requested[id] > item.Quantity {
				return &shared.InsufficientStockError{
					ItemID:    item.ID,
					ItemName:  item.Name,
					Requested: requested[id],
					Available: item.Quantity,
				}
			}
		}

		// Phase two: price and apply.
		lines := make([]TransactionLine, 0, len(input.Lines))
		var total int64
		for _, line := range input.Lines {
			item := items[line.ItemID]
			cost := line.Quantity * item.CostPerUnit
			total += cost
			lines = append(lines, TransactionLine{
				ItemID:   item.ID,
				Name:     item.Name,
				Quantity: line.Quantity,
				Cost:     cost,
			})
		}
		for _, id := range sortedKeys(items) {
			if err := tx.SetItemQuantity(ctx, id, items[id].Quantity-requested[id]); err != nil {
				return err
			}
		}

		entry = Transaction{
			Type:        TransactionExport,
			Lines:       lines,
			TotalAmount: total,
			Note:        note,
			OrderID:     input.OrderID,
			CreatedBy:   input.CreatedBy,
			CreatedAt:   s.now(),
		}
		return s.store.Append(ctx, tx, &entry)
	})
	if err != nil {
		return Transaction{}, err
	}
	s.recordAudit(ctx, input.CreatedBy, entry)
	s.bumpCache(ctx)
	return entry, nil
}

// LowStock lists items at or below their minimum stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx)
}

// Transactions lists ledger entries through the store.
func (s *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return s.store.Query(ctx, filter)
}

// ListItems returns all inventory items.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

// GetItem returns one inventory item.
func (s *Service) GetItem(ctx context.Context, id string) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// CreateItem registers a new item. The initial quantity is the only
// quantity write that bypasses the ledger.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (Item, error) {
	if input.Name == "" || input.Unit == "" {
		return Item{}, shared.Validationf("item name and unit are required")
	}
	if input.Quantity < 0 || input.CostPerUnit < 0 {
		return Item{}, shared.Validationf("item quantity and cost must not be negative")
	}
	category := input.Category
	if category == "" {
		category = CategoryRawMaterial
	}
	minimum := input.MinimumStock
	if minimum <= 0 {
		minimum = 5
	}
	item := Item{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Unit:         input.Unit,
		Quantity:     input.Quantity,
		CostPerUnit:  input.CostPerUnit,
		Supplier:     input.Supplier,
		Category:     category,
		MinimumStock: minimum,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// UpdateItem applies the provided field changes. On-hand quantity cannot be
// edited here; use the ledger.
func (s *Service) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.CostPerUnit != nil {
		if *input.CostPerUnit < 0 {
			return Item{}, shared.Validationf("item cost must not be negative")
		}
		item.CostPerUnit = *input.CostPerUnit
	}
	if input.Supplier != nil {
		item.Supplier = *input.Supplier
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.MinimumStock != nil {
		item.MinimumStock = *input.MinimumStock
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// DeleteItem removes an item from the catalogue.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.repo.DeleteItem(ctx, id)
}

// lockItems resolves and row-locks every referenced item. IDs are locked
// in ascending order so concurrent multi-line calls over overlapping item
// sets cannot deadlock.
func lockItems(ctx context.Context, tx TxRepository, ids []string) (map[string]Item, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	items := make(map[string]Item, len(sorted))
	for _, id := range sorted {
		if _, ok := items[id]; ok {
			continue
		}
		item, err := tx.GetItemForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("inventory item %s: %w", id, shared.ErrNotFound)
			}
			return nil, err
		}
		items[id] = item
	}
	return items, nil
}

func importItemIDs(lines []ImportLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	return ids
}

func exportItemIDs(lines []ExportLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	return ids
}

func sortedKeys(items map[string]Item) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// bumpCache is best effort; a stale dashboard rebuilds on the next read.
func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor string, entry Transaction) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   fmt.Sprintf("inventory:%s", entry.Type),
		Entity:   "inventory_tx",
		EntityID: entry.ID,
		Meta: map[string]any{
			"lines":        len(entry.Lines),
			"total_amount": entry.TotalAmount,
			"note":         entry.Note,
		},
	})
}
