package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lotuskitchen/lotuskitchen/internal/menu"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (Order, error)
	GetByCode(ctx context.Context, code string) (Order, error)
	List(ctx context.Context, filter Filter) ([]Order, error)
	Create(ctx context.Context, o Order) error
	Update(ctx context.Context, o Order) error
	Delete(ctx context.Context, id string) error
}

// MenuPort is the slice of the menu module the order flow needs.
type MenuPort interface {
	Get(ctx context.Context, id string) (menu.Item, error)
}

// CachePort invalidates downstream aggregate caches after an order write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Service implements order management.
type Service struct {
	repo  RepositoryPort
	menu  MenuPort
	cache CachePort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, menuPort MenuPort) *Service {
	return &Service{repo: repo, menu: menuPort, now: func() time.Time { return time.Now() }}
}

// WithCache attaches a cache to invalidate on order writes.
func (s *Service) WithCache(cache CachePort) {
	s.cache = cache
}

// bumpCache is best effort; a stale dashboard rebuilds on the next read.
func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Create builds a new order. Each line snapshots the dish name and price
// from the menu at creation time and the total is always server-computed.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if input.CustomerName == "" || input.Phone == "" {
		return Order{}, shared.Validationf("customer name and phone are required")
	}
	if len(input.Lines) == 0 {
		return Order{}, shared.Validationf("order requires at least one item")
	}

	lines := make([]Line, 0, len(input.Lines))
	var total int64
	for _, l := range input.Lines {
		if l.Quantity <= 0 {
			return Order{}, shared.Validationf("order item quantity must be positive")
		}
		dish, err := s.menu.Get(ctx, l.MenuItemID)
		if err != nil {
			return Order{}, err
		}
		if !dish.Available {
			return Order{}, shared.Validationf("menu item %q is not available", dish.Name)
		}
		lines = append(lines, Line{
			MenuItemID: dish.ID,
			Name:       dish.Name,
			Price:      dish.Price,
			Quantity:   l.Quantity,
			Note:       l.Note,
		})
		total += dish.Price * l.Quantity
	}

	now := s.now()
	order := Order{
		ID:            uuid.NewString(),
		OrderCode:     NewOrderCode(now),
		CustomerName:  input.CustomerName,
		Phone:         input.Phone,
		Email:         input.Email,
		Lines:         lines,
		ReservationID: input.ReservationID,
		TotalAmount:   total,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: PaymentCash,
		Note:          input.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, err
	}
	s.bumpCache(ctx)
	return order, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.Get(ctx, id)
}

// TrackByCode returns the public view of an order.
func (s *Service) TrackByCode(ctx context.Context, code string) (Order, error) {
	order, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Order{}, err
	}
	order.Phone = MaskPhone(order.Phone)
	return order, nil
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Order, error) {
	return s.repo.List(ctx, filter)
}

// Update applies status, payment and note changes. Status changes go
// through the lifecycle check; completed and cancelled orders are frozen.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if input.Status != nil && *input.Status != order.Status {
		if !CanTransition(order.Status, *input.Status) {
			return Order{}, shared.Validationf("cannot change order status from %s to %s", order.Status, *input.Status)
		}
		order.Status = *input.Status
		if *input.Status == StatusServed && order.ServeTime.IsZero() {
			order.ServeTime = s.now()
		}
	}
	if input.PaymentStatus != nil && *input.PaymentStatus != order.PaymentStatus {
		// Payment only moves forward: a settled order stays settled.
		if order.PaymentStatus == PaymentPaid {
			return Order{}, shared.Validationf("order payment is already settled")
		}
		order.PaymentStatus = *input.PaymentStatus
	}
	if input.PaymentMethod != nil {
		order.PaymentMethod = *input.PaymentMethod
	}
	if input.ServeTime != nil {
		order.ServeTime = *input.ServeTime
	}
	if input.Note != nil {
		order.Note = *input.Note
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return Order{}, err
	}
	s.bumpCache(ctx)
	return order, nil
}

// Cancel marks an order cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (Order, error) {
	cancelled := StatusCancelled
	return s.Update(ctx, id, UpdateInput{Status: &cancelled})
}
