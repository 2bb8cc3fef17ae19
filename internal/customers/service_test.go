package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lotuskitchen/lotuskitchen/internal/orders"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

type memoryRepo struct {
	customers map[string]Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{customers: map[string]Customer{}}
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (Customer, error) {
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return Customer{}, shared.ErrNotFound
}

func (m *memoryRepo) Get(_ context.Context, id string) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, c Customer) error {
	for _, existing := range m.customers {
		if existing.Email == c.Email {
			return shared.Validationf("email %q is already registered", c.Email)
		}
	}
	m.customers[c.ID] = c
	return nil
}

func (m *memoryRepo) Update(_ context.Context, c Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		return shared.ErrNotFound
	}
	m.customers[c.ID] = c
	return nil
}

type memoryOrders struct {
	orders []orders.Order
}

func (m *memoryOrders) ListByContact(_ context.Context, email, phone string) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range m.orders {
		if (email != "" && o.Email == email) || o.Phone == phone {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestService(repo *memoryRepo, ordersPort OrdersPort) *Service {
	if ordersPort == nil {
		ordersPort = &memoryOrders{}
	}
	svc := NewService(repo, ordersPort)
	svc.WithNow(func() time.Time { return time.Date(2025, 5, 18, 9, 0, 0, 0, time.UTC) })
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Name:     "Nguyen Van A",
		Email:    " Khach@Example.VN ",
		Phone:    "0912345678",
		Password: "banh-mi-ngon",
		Address:  "12 Ly Thuong Kiet",
	})
	require.NoError(t, err)
	require.Equal(t, "khach@example.vn", created.Email)
	require.NotEqual(t, "banh-mi-ngon", created.PasswordHash)

	got, err := svc.Login(ctx, "khach@example.vn", "banh-mi-ngon")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.Login(ctx, "khach@example.vn", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.vn", "banh-mi-ngon")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.vn", Phone: "09", Password: "longenough"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.vn", Phone: "09", Password: "short"})
	require.True(t, shared.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.vn", Phone: "0912345678", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "a@b.vn", Phone: "0999999999", Password: "longenough"})
	require.True(t, shared.IsValidation(err))
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Name: "A", Email: "a@b.vn", Phone: "0912345678", Password: "longenough",
	})
	require.NoError(t, err)

	address := "45 Tran Hung Dao"
	password := "even-longer-secret"
	updated, err := svc.UpdateProfile(ctx, created.ID, UpdateProfileInput{
		Address:  &address,
		Password: &password,
	})
	require.NoError(t, err)
	require.Equal(t, "45 Tran Hung Dao", updated.Address)
	// Untouched fields survive, the password hash changed.
	require.Equal(t, "a@b.vn", updated.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))

	empty := ""
	_, err = svc.UpdateProfile(ctx, created.ID, UpdateProfileInput{Name: &empty})
	require.True(t, shared.IsValidation(err))
	short := "short"
	_, err = svc.UpdateProfile(ctx, created.ID, UpdateProfileInput{Password: &short})
	require.True(t, shared.IsValidation(err))
}

func TestOrdersMatchedByContact(t *testing.T) {
	repo := newMemoryRepo()
	history := &memoryOrders{orders: []orders.Order{
		{OrderCode: "20250517-111111", Email: "a@b.vn", Phone: "0900000000"},
		{OrderCode: "20250517-222222", Phone: "0912345678"},
		{OrderCode: "20250517-333333", Email: "other@b.vn", Phone: "0988888888"},
	}}
	svc := newTestService(repo, history)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Name: "A", Email: "a@b.vn", Phone: "0912345678", Password: "longenough",
	})
	require.NoError(t, err)

	// Walk-in orders under the same email or phone belong to the account.
	list, err := svc.Orders(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = svc.Orders(ctx, "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
