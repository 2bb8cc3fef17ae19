package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lotuskitchen/lotuskitchen/internal/orders"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	GetByEmail(ctx context.Context, email string) (Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	Create(ctx context.Context, c Customer) error
	Update(ctx context.Context, c Customer) error
}

// OrdersPort is the slice of the orders module a customer account needs:
// counter orders carry no customer id, so history is matched on contact
// details.
type OrdersPort interface {
	ListByContact(ctx context.Context, email, phone string) ([]orders.Order, error)
}

// Service implements customer accounts.
type Service struct {
	repo   RepositoryPort
	orders OrdersPort
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, ordersPort OrdersPort) *Service {
	return &Service{repo: repo, orders: ordersPort, now: func() time.Time { return time.Now() }}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Register creates a customer account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || email == "" || input.Phone == "" {
		return Customer{}, shared.Validationf("name, email and phone are required")
	}
	if len(input.Password) < 8 {
		return Customer{}, shared.Validationf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}
	customer := Customer{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Address:      input.Address,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce
// the same error so the response never leaks which one was off.
func (s *Service) Login(ctx context.Context, email, password string) (Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Customer{}, shared.ErrInvalidCredentials
	}
	customer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Customer{}, shared.ErrInvalidCredentials
		}
		return Customer{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return Customer{}, shared.ErrInvalidCredentials
	}
	return customer, nil
}

// Profile returns a customer by id.
func (s *Service) Profile(ctx context.Context, id string) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfile applies the provided field changes, re-hashing the
// password when one is supplied.
func (s *Service) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if input.Name != nil {
		if *input.Name == "" {
			return Customer{}, shared.Validationf("name must not be empty")
		}
		customer.Name = *input.Name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return Customer{}, shared.Validationf("email must not be empty")
		}
		customer.Email = email
	}
	if input.Phone != nil {
		if *input.Phone == "" {
			return Customer{}, shared.Validationf("phone must not be empty")
		}
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return Customer{}, shared.Validationf("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return Customer{}, err
		}
		customer.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// Orders lists the customer's order history, matched on email or phone.
func (s *Service) Orders(ctx context.Context, id string) ([]orders.Order, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByContact(ctx, customer.Email, customer.Phone)
}
