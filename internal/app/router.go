package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lotuskitchen/lotuskitchen/internal/auth"
	"github.com/lotuskitchen/lotuskitchen/internal/customers"
	"github.com/lotuskitchen/lotuskitchen/internal/dashboard"
	"github.com/lotuskitchen/lotuskitchen/internal/inventory"
	"github.com/lotuskitchen/lotuskitchen/internal/menu"
	"github.com/lotuskitchen/lotuskitchen/internal/observability"
	"github.com/lotuskitchen/lotuskitchen/internal/orders"
	"github.com/lotuskitchen/lotuskitchen/internal/reservations"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
	"github.com/lotuskitchen/lotuskitchen/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	CustomerHandler    *customers.Handler
	InventoryHandler   *inventory.Handler
	MenuHandler        *menu.Handler
	OrderHandler       *orders.Handler
	ReservationHandler *reservations.Handler
	DashboardHandler   *dashboard.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Lotus Kitchen defaults. Menu
// browsing, order placement and order tracking stay public; everything
// operational requires a staff session.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)
		api.Route("/customers", params.CustomerHandler.MountRoutes)
		api.Route("/menu", params.MenuHandler.MountRoutes)
		api.Route("/orders", params.OrderHandler.MountRoutes)
		api.Route("/reservations", params.ReservationHandler.MountRoutes)

		api.Group(func(staff chi.Router) {
			staff.Use(auth.RequireAuth)
			staff.Route("/inventory", params.InventoryHandler.MountRoutes)
			staff.Route("/dashboard", params.DashboardHandler.MountRoutes)
			if params.JobHandler != nil {
				staff.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
