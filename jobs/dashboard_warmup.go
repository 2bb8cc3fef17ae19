package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lotuskitchen/lotuskitchen/internal/dashboard"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// DashboardWarmupJob recomputes the common dashboard aggregates so the
// first staff request of the morning hits a warm cache.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Cache     *dashboard.Cache
	Logger    *slog.Logger
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, cache *dashboard.Cache, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: svc, Cache: cache, Logger: logger}
}

// Handle processes warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	periods := payload.Periods
	if len(periods) == 0 {
		periods = []string{shared.PeriodToday, shared.PeriodWeek, shared.PeriodMonth}
	}

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, period := range periods {
		if err := j.warmPeriod(ctx, period); err != nil {
			logger.Warn("dashboard warmup period failed",
				slog.String("period", period),
				slog.Any("error", err))
		}
	}
	logger.Info("dashboard warmup finished", slog.Int("periods", len(periods)))
	return nil
}

func (j *DashboardWarmupJob) warmPeriod(ctx context.Context, period string) error {
	rng, err := j.Dashboard.ResolveRange(period, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	key, err := j.Cache.BuildKey(ctx, "dashboard", "revenue", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	if err != nil {
		return err
	}
	var stats dashboard.RangeStats
	return j.Cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		return j.Dashboard.StatsForRange(ctx, rng)
	})
}
