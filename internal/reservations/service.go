package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (Reservation, error)
	List(ctx context.Context, filter Filter) ([]Reservation, error)
	Create(ctx context.Context, res Reservation) error
	Update(ctx context.Context, res Reservation) error
	Delete(ctx context.Context, id string) error
}

// Service implements reservation management.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now() }}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// List returns reservations matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Reservation, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one reservation.
func (s *Service) Get(ctx context.Context, id string) (Reservation, error) {
	return s.repo.Get(ctx, id)
}

// Create books a table. New bookings start pending.
func (s *Service) Create(ctx context.Context, input CreateInput) (Reservation, error) {
	if input.CustomerName == "" || input.Phone == "" {
		return Reservation{}, shared.Validationf("customer name and phone are required")
	}
	if input.Date.IsZero() || input.Time == "" {
		return Reservation{}, shared.Validationf("reservation date and time are required")
	}
	if input.People < 1 {
		return Reservation{}, shared.Validationf("reservation needs at least one person")
	}
	res := Reservation{
		ID:              uuid.NewString(),
		CustomerName:    input.CustomerName,
		Phone:           input.Phone,
		Email:           input.Email,
		Date:            shared.StartOfDay(input.Date),
		Time:            input.Time,
		People:          input.People,
		SpecialRequests: input.SpecialRequests,
		Status:          StatusPending,
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return Reservation{}, err
	}
	return res, nil
}

// Update applies the provided changes.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Reservation, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if input.Date != nil {
		res.Date = shared.StartOfDay(*input.Date)
	}
	if input.Time != nil {
		res.Time = *input.Time
	}
	if input.People != nil {
		if *input.People < 1 {
			return Reservation{}, shared.Validationf("reservation needs at least one person")
		}
		res.People = *input.People
	}
	if input.SpecialRequests != nil {
		res.SpecialRequests = *input.SpecialRequests
	}
	if input.Status != nil {
		res.Status = *input.Status
	}
	if input.Table != nil {
		res.Table = *input.Table
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return Reservation{}, err
	}
	return res, nil
}

// Delete removes a reservation.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
