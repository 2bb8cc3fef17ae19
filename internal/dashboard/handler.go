package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/lotuskitchen/lotuskitchen/internal/platform/httpx"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Handler wires HTTP endpoints for the dashboard module.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *Cache
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, cache *Cache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/today", h.handleToday)
	r.Get("/revenue", h.handleRevenue)
	r.Get("/profit", h.handleProfit)
	r.Get("/top-items", h.handleTopItems)
	r.Get("/overview", h.handleOverview)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, err := h.cache.BuildKey(ctx, "dashboard", "today", h.service.now().Format("2006-01-02"))
	if err != nil {
		h.respondError(w, "today stats", err)
		return
	}
	var stats TodayStats
	err = h.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		return h.service.Today(ctx)
	})
	if err != nil {
		h.respondError(w, "today stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	period := q.Get("period")

	var start, end time.Time
	if period == shared.PeriodCustom {
		var err error
		if start, err = time.Parse("2006-01-02", q.Get("start")); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid start date")
			return
		}
		if end, err = time.Parse("2006-01-02", q.Get("end")); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid end date")
			return
		}
	}
	rng, err := h.service.ResolveRange(period, start, end)
	if err != nil {
		h.respondError(w, "revenue stats", err)
		return
	}

	key, err := h.cache.BuildKey(ctx, "dashboard", "revenue", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	if err != nil {
		h.respondError(w, "revenue stats", err)
		return
	}
	var stats RangeStats
	err = h.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		return h.service.StatsForRange(ctx, rng)
	})
	if err != nil {
		h.respondError(w, "revenue stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleProfit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := r.URL.Query().Get("period")

	key, err := h.cache.BuildKey(ctx, "dashboard", "profit", period, h.service.now().Format("2006-01-02"))
	if err != nil {
		h.respondError(w, "profit stats", err)
		return
	}
	var stats ProfitStats
	err = h.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		return h.service.Profit(ctx, period)
	})
	if err != nil {
		h.respondError(w, "profit stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleTopItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	period := q.Get("period")
	limit := 5
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	key, err := h.cache.BuildKey(ctx, "dashboard", "top-items", period, strconv.Itoa(limit), h.service.now().Format("2006-01-02"))
	if err != nil {
		h.respondError(w, "top items", err)
		return
	}
	var items []TopItem
	err = h.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
		return h.service.TopItems(ctx, period, limit)
	})
	if err != nil {
		h.respondError(w, "top items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

type overviewPayload struct {
	Today    TodayStats `json:"today"`
	Week     RangeStats `json:"week"`
	TopItems []TopItem  `json:"topItems"`
}

// handleOverview fans the three landing-page aggregates out concurrently.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	var payload overviewPayload
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		stats, err := h.service.Today(ctx)
		if err == nil {
			payload.Today = stats
		}
		return err
	})
	g.Go(func() error {
		rng, err := h.service.ResolveRange(shared.PeriodWeek, time.Time{}, time.Time{})
		if err != nil {
			return err
		}
		stats, err := h.service.StatsForRange(ctx, rng)
		if err == nil {
			payload.Week = stats
		}
		return err
	})
	g.Go(func() error {
		items, err := h.service.TopItems(ctx, shared.PeriodWeek, 5)
		if err == nil {
			payload.TopItems = items
		}
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(w, "overview", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case shared.IsValidation(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
