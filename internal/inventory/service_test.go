package inventory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

type memoryRepo struct {
	items map[string]Item
	txs   []Transaction
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]Item)}
}

type memoryTx struct {
	repo    *memoryRepo
	items   map[string]Item
	entries []Transaction
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: m, items: make(map[string]Item)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// Commit: staged writes become visible only when the callback succeeds.
	for id, it := range tx.items {
		m.items[id] = it
	}
	m.txs = append(m.txs, tx.entries...)
	return nil
}

func (t *memoryTx) GetItemForUpdate(_ context.Context, id string) (Item, error) {
	if it, ok := t.items[id]; ok {
		return it, nil
	}
	it, ok := t.repo.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (t *memoryTx) SetItemQuantity(_ context.Context, id string, quantity int64) error {
	it, err := t.GetItemForUpdate(context.Background(), id)
	if err != nil {
		return err
	}
	it.Quantity = quantity
	t.items[id] = it
	return nil
}

func (t *memoryTx) InsertTransaction(_ context.Context, entry Transaction) error {
	t.entries = append(t.entries, entry)
	return nil
}

func (m *memoryRepo) GetItem(_ context.Context, id string) (Item, error) {
	it, ok := m.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (m *memoryRepo) ListItems(_ context.Context) ([]Item, error) {
	items := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *memoryRepo) ListLowStock(_ context.Context) ([]Item, error) {
	var items []Item
	for _, it := range m.items {
		if it.IsLowStock() {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *memoryRepo) CreateItem(_ context.Context, it Item) error {
	m.items[it.ID] = it
	return nil
}

func (m *memoryRepo) UpdateItem(_ context.Context, it Item) error {
	if _, ok := m.items[it.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[it.ID] = it
	return nil
}

func (m *memoryRepo) DeleteItem(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) ListTransactions(_ context.Context, filter TransactionFilter) ([]Transaction, error) {
	var out []Transaction
	for _, t := range m.txs {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && t.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.CreatedAt.After(filter.To) {
			continue
		}
		if filter.OrderID != "" && t.OrderID != filter.OrderID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) totalQuantity() int64 {
	var total int64
	for _, it := range m.items {
		total += it.Quantity
	}
	return total
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, NewStore(repo), nil)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time {
		base = base.Add(time.Second)
		return base
	})
	return svc
}

func seedItem(repo *memoryRepo, id, name string, quantity, cost int64) {
	repo.items[id] = Item{
		ID:           id,
		Name:         name,
		Unit:         "kg",
		Quantity:     quantity,
		CostPerUnit:  cost,
		Category:     CategoryRawMaterial,
		MinimumStock: 5,
	}
}

func TestApplyImportIncreasesStockAndRecordsEntry(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 50, 12000)
	svc := newTestService(repo)

	cost := int64(15000)
	entry, err := svc.ApplyImport(context.Background(), ImportInput{
		Lines:    []ImportLine{{ItemID: "rice", Quantity: 30, UnitCost: &cost}},
		Supplier: "Mekong Farm",
	})
	require.NoError(t, err)
	require.Equal(t, TransactionImport, entry.Type)
	require.EqualValues(t, 450000, entry.TotalAmount)
	require.Len(t, entry.Lines, 1)
	require.Equal(t, "Rice", entry.Lines[0].Name)

	item, err := repo.GetItem(context.Background(), "rice")
	require.NoError(t, err)
	require.EqualValues(t, 80, item.Quantity)
	require.Len(t, repo.txs, 1)
}

func TestApplyImportDefaultsToItemCost(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 10, 12000)
	svc := newTestService(repo)

	entry, err := svc.ApplyImport(context.Background(), ImportInput{
		Lines: []ImportLine{{ItemID: "rice", Quantity: 5}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 60000, entry.TotalAmount)
}

func TestApplyImportUnknownItemRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 50, 12000)
	svc := newTestService(repo)

	_, err := svc.ApplyImport(context.Background(), ImportInput{
		Lines: []ImportLine{
			{ItemID: "rice", Quantity: 10},
			{ItemID: "missing", Quantity: 1},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	item, _ := repo.GetItem(context.Background(), "rice")
	require.EqualValues(t, 50, item.Quantity)
	require.Empty(t, repo.txs)
}

func TestApplyImportRejectsBadLines(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 50, 12000)
	svc := newTestService(repo)

	_, err := svc.ApplyImport(context.Background(), ImportInput{})
	require.True(t, shared.IsValidation(err))

	_, err = svc.ApplyImport(context.Background(), ImportInput{
		Lines: []ImportLine{{ItemID: "rice", Quantity: 0}},
	})
	require.True(t, shared.IsValidation(err))

	negative := int64(-1)
	_, err = svc.ApplyImport(context.Background(), ImportInput{
		Lines: []ImportLine{{ItemID: "rice", Quantity: 1, UnitCost: &negative}},
	})
	require.True(t, shared.IsValidation(err))
}

func TestApplyExportDecrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 80, 15000)
	svc := newTestService(repo)

	entry, err := svc.ApplyExport(context.Background(), ExportInput{
		Lines: []ExportLine{{ItemID: "rice", Quantity: 40}},
	})
	require.NoError(t, err)
	require.Equal(t, TransactionExport, entry.Type)
	require.EqualValues(t, 600000, entry.TotalAmount)

	item, _ := repo.GetItem(context.Background(), "rice")
	require.EqualValues(t, 40, item.Quantity)
}

func TestApplyExportInsufficientStockLeavesNoTrace(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 40, 15000)
	seedItem(repo, "salt", "Salt", 100, 2000)
	svc := newTestService(repo)

	_, err := svc.ApplyExport(context.Background(), ExportInput{
		Lines: []ExportLine{
			{ItemID: "salt", Quantity: 10},
			{ItemID: "rice", Quantity: 50},
		},
	})
	var ise *shared.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Equal(t, "Rice", ise.ItemName)
	require.EqualValues(t, 50, ise.Requested)
	require.EqualValues(t, 40, ise.Available)

	rice, _ := repo.GetItem(context.Background(), "rice")
	salt, _ := repo.GetItem(context.Background(), "salt")
	require.EqualValues(t, 40, rice.Quantity)
	require.EqualValues(t, 100, salt.Quantity)
	require.Empty(t, repo.txs)
}

func TestApplyExportAggregatesRepeatedLines(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 10, 1000)
	svc := newTestService(repo)

	// Two lines of 6 each exceed the 10 on hand even though each one
	// alone would pass.
	_, err := svc.ApplyExport(context.Background(), ExportInput{
		Lines: []ExportLine{
			{ItemID: "rice", Quantity: 6},
			{ItemID: "rice", Quantity: 6},
		},
	})
	var ise *shared.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.EqualValues(t, 12, ise.Requested)

	item, _ := repo.GetItem(context.Background(), "rice")
	require.EqualValues(t, 10, item.Quantity)
}

func TestQuantityConservation(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 100, 1000)
	seedItem(repo, "salt", "Salt", 100, 500)
	svc := newTestService(repo)
	ctx := context.Background()

	before := repo.totalQuantity()

	_, err := svc.ApplyImport(ctx, ImportInput{
		Lines: []ImportLine{{ItemID: "rice", Quantity: 25}, {ItemID: "salt", Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = svc.ApplyExport(ctx, ExportInput{
		Lines: []ExportLine{{ItemID: "rice", Quantity: 40}},
	})
	require.NoError(t, err)
	_, err = svc.ApplyExport(ctx, ExportInput{
		Lines: []ExportLine{{ItemID: "salt", Quantity: 500}},
	})
	require.Error(t, err)

	require.Equal(t, before+25+5-40, repo.totalQuantity())
}

func TestTransactionsNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 100, 1000)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ApplyImport(ctx, ImportInput{Lines: []ImportLine{{ItemID: "rice", Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.ApplyExport(ctx, ExportInput{Lines: []ExportLine{{ItemID: "rice", Quantity: 1}}})
	require.NoError(t, err)

	txs, err := svc.Transactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, TransactionExport, txs[0].Type)
	require.Equal(t, TransactionImport, txs[1].Type)

	imports, err := svc.Transactions(ctx, TransactionFilter{Type: TransactionImport})
	require.NoError(t, err)
	require.Len(t, imports, 1)
}

func TestTransactionsRejectsInvertedRange(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Transactions(context.Background(), TransactionFilter{
		From: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.True(t, shared.IsValidation(err))
}

func TestCreateItemDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	item, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "Fish Sauce", Unit: "l"})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, CategoryRawMaterial, item.Category)
	require.EqualValues(t, 5, item.MinimumStock)

	_, err = svc.CreateItem(context.Background(), CreateItemInput{Name: "", Unit: "l"})
	require.True(t, shared.IsValidation(err))
}

func TestUpdateItemLeavesQuantityAlone(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 42, 1000)
	svc := newTestService(repo)

	name := "Jasmine Rice"
	cost := int64(1500)
	item, err := svc.UpdateItem(context.Background(), "rice", UpdateItemInput{Name: &name, CostPerUnit: &cost})
	require.NoError(t, err)
	require.Equal(t, "Jasmine Rice", item.Name)
	require.EqualValues(t, 1500, item.CostPerUnit)
	require.EqualValues(t, 42, item.Quantity)
}

func TestLowStock(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo, "rice", "Rice", 3, 1000)
	seedItem(repo, "salt", "Salt", 50, 500)
	svc := newTestService(repo)

	items, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Rice", items[0].Name)
}
