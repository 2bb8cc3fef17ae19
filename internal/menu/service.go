package menu

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, filter Filter) ([]Item, error)
	Create(ctx context.Context, it Item) error
	Update(ctx context.Context, it Item) error
	Delete(ctx context.Context, id string) error
}

// Service implements menu management.
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

// List returns dishes matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Item, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one dish.
func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new dish. New dishes start out available.
func (s *Service) Create(ctx context.Context, input CreateInput) (Item, error) {
	if input.Name == "" || input.Description == "" {
		return Item{}, shared.Validationf("menu item name and description are required")
	}
	if input.Price < 0 || input.CostPrice < 0 {
		return Item{}, shared.Validationf("menu item price and cost must not be negative")
	}
	image := input.Image
	if image == "" {
		image = "default-food.jpg"
	}
	item := Item{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CostPrice:   input.CostPrice,
		Category:    input.Category,
		Image:       image,
		Available:   true,
		Popular:     input.Popular,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update applies the provided field changes.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return Item{}, shared.Validationf("menu item price must not be negative")
		}
		item.Price = *input.Price
	}
	if input.CostPrice != nil {
		if *input.CostPrice < 0 {
			return Item{}, shared.Validationf("menu item cost must not be negative")
		}
		item.CostPrice = *input.CostPrice
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Image != nil {
		item.Image = *input.Image
	}
	if input.Available != nil {
		item.Available = *input.Available
	}
	if input.Popular != nil {
		item.Popular = *input.Popular
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a dish from the menu.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
