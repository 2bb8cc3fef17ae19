package dashboard

import (
	"context"
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// ReaderPort is the read surface the service aggregates over.
type ReaderPort interface {
	RevenueInRange(ctx context.Context, rng shared.DateRange) (revenue, count int64, err error)
	RevenueByDay(ctx context.Context, rng shared.DateRange) ([]DayRevenue, error)
	PaidRevenueInRange(ctx context.Context, rng shared.DateRange) (int64, error)
	PaidOrderCountInRange(ctx context.Context, rng shared.DateRange) (int64, error)
	ImportCostInRange(ctx context.Context, rng shared.DateRange) (int64, error)
	ReservationCountInRange(ctx context.Context, rng shared.DateRange) (int64, error)
	TopItems(ctx context.Context, rng shared.DateRange, limit int) ([]TopItem, error)
}

// Service computes the dashboard aggregates. It keeps two deliberately
// different revenue figures: RangeStats counts every order, ProfitStats
// counts paid orders only.
type Service struct {
	repo ReaderPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo ReaderPort) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now() }}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// ResolveRange turns a period preset (or explicit custom bounds) into a
// concrete range. Revenue defaults to the trailing week.
func (s *Service) ResolveRange(period string, start, end time.Time) (shared.DateRange, error) {
	if period == shared.PeriodCustom {
		if start.IsZero() || end.IsZero() {
			return shared.DateRange{}, shared.Validationf("custom period requires start and end dates")
		}
		return shared.CustomRange(start, end)
	}
	return shared.ResolvePeriod(period, s.now(), shared.PeriodWeek), nil
}

// StatsForRange aggregates unconditional revenue over the range with a
// per-day breakdown in ascending date order.
func (s *Service) StatsForRange(ctx context.Context, rng shared.DateRange) (RangeStats, error) {
	revenue, count, err := s.repo.RevenueInRange(ctx, rng)
	if err != nil {
		return RangeStats{}, err
	}
	byDay, err := s.repo.RevenueByDay(ctx, rng)
	if err != nil {
		return RangeStats{}, err
	}
	if byDay == nil {
		byDay = []DayRevenue{}
	}
	return RangeStats{
		StartDate:    rng.Start,
		EndDate:      rng.End,
		TotalRevenue: revenue,
		OrderCount:   count,
		RevenueData:  byDay,
	}, nil
}

// Today builds the current-day overview.
func (s *Service) Today(ctx context.Context) (TodayStats, error) {
	now := s.now()
	rng := shared.DateRange{Start: shared.StartOfDay(now), End: shared.EndOfDay(now)}

	revenue, count, err := s.repo.RevenueInRange(ctx, rng)
	if err != nil {
		return TodayStats{}, err
	}
	paid, err := s.repo.PaidOrderCountInRange(ctx, rng)
	if err != nil {
		return TodayStats{}, err
	}
	reservations, err := s.repo.ReservationCountInRange(ctx, rng)
	if err != nil {
		return TodayStats{}, err
	}
	return TodayStats{
		Date:             rng.Start,
		TotalRevenue:     revenue,
		OrderCount:       count,
		PaidOrders:       paid,
		ReservationCount: reservations,
	}, nil
}

// Profit sets paid revenue against ledger import spend for the period.
// The default period is today. A zero revenue yields a zero margin rather
// than a division by zero.
func (s *Service) Profit(ctx context.Context, period string) (ProfitStats, error) {
	rng := shared.ResolvePeriod(period, s.now(), shared.PeriodToday)

	revenue, err := s.repo.PaidRevenueInRange(ctx, rng)
	if err != nil {
		return ProfitStats{}, err
	}
	cost, err := s.repo.ImportCostInRange(ctx, rng)
	if err != nil {
		return ProfitStats{}, err
	}
	gross := revenue - cost
	var margin float64
	if revenue > 0 {
		margin = float64(gross) / float64(revenue) * 100
	}
	return ProfitStats{
		Period:       period,
		StartDate:    rng.Start,
		EndDate:      rng.End,
		TotalRevenue: revenue,
		TotalCost:    cost,
		GrossProfit:  gross,
		ProfitMargin: margin,
	}, nil
}

// TopItems ranks dishes by quantity sold. An empty period means all time.
func (s *Service) TopItems(ctx context.Context, period string, limit int) ([]TopItem, error) {
	if limit <= 0 {
		limit = 5
	}
	var rng shared.DateRange
	if period == "" {
		rng = shared.DateRange{Start: time.Unix(0, 0), End: shared.EndOfDay(s.now())}
	} else {
		rng = shared.ResolvePeriod(period, s.now(), period)
	}
	items, err := s.repo.TopItems(ctx, rng, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []TopItem{}
	}
	return items, nil
}
