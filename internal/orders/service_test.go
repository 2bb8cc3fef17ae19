package orders

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lotuskitchen/lotuskitchen/internal/menu"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

type memoryRepo struct {
	orders map[string]Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[string]Order)}
}

func (m *memoryRepo) Get(_ context.Context, id string) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (m *memoryRepo) GetByCode(_ context.Context, code string) (Order, error) {
	for _, o := range m.orders {
		if o.OrderCode == code {
			return o, nil
		}
	}
	return Order{}, shared.ErrNotFound
}

func (m *memoryRepo) List(_ context.Context, filter Filter) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, o Order) error {
	m.orders[o.ID] = o
	return nil
}

func (m *memoryRepo) Update(_ context.Context, o Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return shared.ErrNotFound
	}
	m.orders[o.ID] = o
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

type memoryMenu struct {
	items map[string]menu.Item
}

func (m *memoryMenu) Get(_ context.Context, id string) (menu.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return menu.Item{}, shared.ErrNotFound
	}
	return it, nil
}

func newTestService(repo *memoryRepo) *Service {
	menuPort := &memoryMenu{items: map[string]menu.Item{
		"pho":    {ID: "pho", Name: "Pho Bo", Price: 65000, Available: true},
		"coffee": {ID: "coffee", Name: "Ca Phe Sua Da", Price: 25000, Available: true},
		"special": {ID: "special", Name: "Seasonal Special", Price: 120000, Available: false},
	}}
	svc := NewService(repo, menuPort)
	svc.WithNow(func() time.Time { return time.Date(2025, 5, 18, 11, 30, 0, 0, time.UTC) })
	return svc
}

func TestCreateSnapshotsMenuPrices(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerName: "Lan",
		Phone:        "0912345678",
		Lines: []CreateLine{
			{MenuItemID: "pho", Quantity: 2},
			{MenuItemID: "coffee", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.EqualValues(t, 2*65000+25000, order.TotalAmount)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Len(t, order.Lines, 2)
	require.Equal(t, "Pho Bo", order.Lines[0].Name)
	require.EqualValues(t, 65000, order.Lines[0].Price)
	require.Regexp(t, `^20250518-\d{6}$`, order.OrderCode)
}

func TestCreateRejectsUnavailableDish(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerName: "Lan",
		Phone:        "0912345678",
		Lines:        []CreateLine{{MenuItemID: "special", Quantity: 1}},
	})
	require.True(t, shared.IsValidation(err))
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Phone: "0912345678", Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}}})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, CreateInput{CustomerName: "Lan", Phone: "0912345678"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 0}},
	})
	require.True(t, shared.IsValidation(err))
}

func TestStatusLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)

	for _, next := range []Status{StatusPreparing, StatusReady, StatusServed, StatusCompleted} {
		status := next
		order, err = svc.Update(ctx, order.ID, UpdateInput{Status: &status})
		require.NoError(t, err)
		require.Equal(t, next, order.Status)
	}
	require.False(t, order.ServeTime.IsZero())

	// Completed orders are frozen.
	pending := StatusPending
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &pending})
	require.True(t, shared.IsValidation(err))
	_, err = svc.Cancel(ctx, order.ID)
	require.True(t, shared.IsValidation(err))
}

func TestStatusCannotMoveBackwards(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)

	ready := StatusReady
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &ready})
	require.NoError(t, err)

	preparing := StatusPreparing
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &preparing})
	require.True(t, shared.IsValidation(err))
}

func TestCancelFromPending(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)

	order, err = svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, order.Status)
}

func TestTrackByCodeMasksPhone(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)

	tracked, err := svc.TrackByCode(ctx, created.OrderCode)
	require.NoError(t, err)
	require.Equal(t, "0912****678", tracked.Phone)

	_, err = svc.TrackByCode(ctx, "20250518-000000")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMaskPhoneShortNumbers(t *testing.T) {
	require.Equal(t, "123456", MaskPhone("123456"))
	require.Equal(t, "0912****678", MaskPhone("0912345678"))
}

type countingCache struct {
	bumps int
}

func (c *countingCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

func TestWritesBumpCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	cache := &countingCache{}
	svc.WithCache(cache)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.bumps)

	paid := PaymentPaid
	_, err = svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &paid})
	require.NoError(t, err)
	require.Equal(t, 2, cache.bumps)

	// Reads leave the cache version alone.
	_, err = svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 2, cache.bumps)
}

func TestMarkPaid(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "coffee", Quantity: 2}},
	})
	require.NoError(t, err)

	paid := PaymentPaid
	transfer := PaymentBankTransfer
	order, err = svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &paid, PaymentMethod: &transfer})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, order.PaymentStatus)
	require.Equal(t, PaymentBankTransfer, order.PaymentMethod)
}

func TestPaidOrderCannotRevertToUnpaid(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{
		CustomerName: "Lan", Phone: "0912345678",
		Lines: []CreateLine{{MenuItemID: "pho", Quantity: 1}},
	})
	require.NoError(t, err)

	paid := PaymentPaid
	order, err = svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &paid})
	require.NoError(t, err)

	unpaid := PaymentUnpaid
	_, err = svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &unpaid})
	require.True(t, shared.IsValidation(err))

	// Re-sending paid is a no-op, not an error.
	got, err := svc.Update(ctx, order.ID, UpdateInput{PaymentStatus: &paid})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, got.PaymentStatus)
}
