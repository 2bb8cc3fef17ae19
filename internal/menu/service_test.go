package menu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

type memoryRepo struct {
	items map[string]Item
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Item{}}
}

func (m *memoryRepo) Get(_ context.Context, id string) (Item, error) {
	it, ok := m.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return it, nil
}

func (m *memoryRepo) List(_ context.Context, filter Filter) ([]Item, error) {
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		if filter.AvailableOnly && !it.Available {
			continue
		}
		if filter.PopularOnly && !it.Popular {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, it Item) error {
	m.items[it.ID] = it
	return nil
}

func (m *memoryRepo) Update(_ context.Context, it Item) error {
	if _, ok := m.items[it.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[it.ID] = it
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var testNow = time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return testNow })
	return svc
}

func TestCreateDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), CreateInput{
		Name:        "Pho Bo",
		Description: "Beef noodle soup",
		Price:       65000,
		CostPrice:   28000,
		Category:    CategoryMain,
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.True(t, item.Available)
	require.Equal(t, "default-food.jpg", item.Image)
	require.Equal(t, testNow, item.CreatedAt)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{Description: "no name"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(context.Background(), CreateInput{Name: "Pho", Description: "d", Price: -1})
	require.True(t, shared.IsValidation(err))
}

func TestUpdateMergesFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), CreateInput{
		Name:        "Ca Phe Sua Da",
		Description: "Iced milk coffee",
		Price:       25000,
		CostPrice:   7000,
		Category:    CategoryBeverage,
	})
	require.NoError(t, err)

	price := int64(28000)
	unavailable := false
	updated, err := svc.Update(context.Background(), item.ID, UpdateInput{
		Price:     &price,
		Available: &unavailable,
	})
	require.NoError(t, err)
	require.EqualValues(t, 28000, updated.Price)
	require.False(t, updated.Available)
	// Untouched fields survive.
	require.Equal(t, "Ca Phe Sua Da", updated.Name)
	require.EqualValues(t, 7000, updated.CostPrice)

	negative := int64(-5)
	_, err = svc.Update(context.Background(), item.ID, UpdateInput{CostPrice: &negative})
	require.True(t, shared.IsValidation(err))
}

func TestListFilters(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	pho, err := svc.Create(ctx, CreateInput{Name: "Pho Bo", Description: "d", Price: 65000, Category: CategoryMain, Popular: true})
	require.NoError(t, err)
	che, err := svc.Create(ctx, CreateInput{Name: "Che Ba Mau", Description: "d", Price: 30000, Category: CategoryDessert})
	require.NoError(t, err)

	off := false
	_, err = svc.Update(ctx, che.ID, UpdateInput{Available: &off})
	require.NoError(t, err)

	mains, err := svc.List(ctx, Filter{Category: CategoryMain})
	require.NoError(t, err)
	require.Len(t, mains, 1)
	require.Equal(t, pho.ID, mains[0].ID)

	available, err := svc.List(ctx, Filter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)

	popular, err := svc.List(ctx, Filter{PopularOnly: true})
	require.NoError(t, err)
	require.Len(t, popular, 1)
	require.Equal(t, pho.ID, popular[0].ID)
}

func TestProfitHelpers(t *testing.T) {
	item := Item{Price: 65000, CostPrice: 28000}
	require.EqualValues(t, 37000, item.Profit())
	require.InDelta(t, 56.92, item.ProfitMargin(), 0.01)

	free := Item{Price: 0, CostPrice: 5000}
	require.EqualValues(t, -5000, free.Profit())
	require.Zero(t, free.ProfitMargin())
}

func TestParseCategory(t *testing.T) {
	cat, err := ParseCategory("specialty")
	require.NoError(t, err)
	require.Equal(t, CategorySpecialty, cat)

	_, err = ParseCategory("snack")
	require.True(t, shared.IsValidation(err))
}
