package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

type memoryRepo struct {
	reservations map[string]Reservation
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{reservations: map[string]Reservation{}}
}

func (m *memoryRepo) Get(_ context.Context, id string) (Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return Reservation{}, shared.ErrNotFound
	}
	return res, nil
}

func (m *memoryRepo) List(_ context.Context, filter Filter) ([]Reservation, error) {
	out := make([]Reservation, 0, len(m.reservations))
	for _, res := range m.reservations {
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		if !filter.Date.IsZero() && !res.Date.Equal(shared.StartOfDay(filter.Date)) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, res Reservation) error {
	m.reservations[res.ID] = res
	return nil
}

func (m *memoryRepo) Update(_ context.Context, res Reservation) error {
	if _, ok := m.reservations[res.ID]; !ok {
		return shared.ErrNotFound
	}
	m.reservations[res.ID] = res
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.reservations[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.reservations, id)
	return nil
}

var testNow = time.Date(2025, 5, 18, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return testNow })
	return svc
}

func TestCreateStartsPending(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	res, err := svc.Create(context.Background(), CreateInput{
		CustomerName: "Nguyen Van A",
		Phone:        "0912345678",
		Date:         time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC),
		Time:         "19:30",
		People:       4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	require.Equal(t, StatusPending, res.Status)
	// The date is normalized to the start of the day; the slot lives in Time.
	require.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), res.Date)
	require.Equal(t, "19:30", res.Time)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateInput{Phone: "0912345678", Date: date, Time: "19:30", People: 2})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, CreateInput{CustomerName: "A", Phone: "0912345678", Time: "19:30", People: 2})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Create(ctx, CreateInput{CustomerName: "A", Phone: "0912345678", Date: date, Time: "19:30", People: 0})
	require.True(t, shared.IsValidation(err))
}

func TestUpdateAssignsTableAndStatus(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	res, err := svc.Create(ctx, CreateInput{
		CustomerName: "Tran Thi B",
		Phone:        "0987654321",
		Date:         time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC),
		Time:         "12:00",
		People:       2,
	})
	require.NoError(t, err)

	confirmed := StatusConfirmed
	table := "T5"
	updated, err := svc.Update(ctx, res.ID, UpdateInput{Status: &confirmed, Table: &table})
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, updated.Status)
	require.Equal(t, "T5", updated.Table)
	require.Equal(t, 2, updated.People)

	zero := 0
	_, err = svc.Update(ctx, res.ID, UpdateInput{People: &zero})
	require.True(t, shared.IsValidation(err))
}

func TestListByDate(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CustomerName: "A", Phone: "0911111111",
		Date: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Time: "18:00", People: 2,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{
		CustomerName: "B", Phone: "0922222222",
		Date: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), Time: "18:00", People: 3,
	})
	require.NoError(t, err)

	list, err := svc.List(ctx, Filter{Date: time.Date(2025, 5, 21, 14, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "B", list[0].CustomerName)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	err := svc.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
