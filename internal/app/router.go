package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nomadexpress/backoffice/internal/deliveries"
	"github.com/nomadexpress/backoffice/internal/goods"
	"github.com/nomadexpress/backoffice/internal/observability"
	"github.com/nomadexpress/backoffice/internal/reports"
	"github.com/nomadexpress/backoffice/internal/status"
	"github.com/nomadexpress/backoffice/internal/users"
	"github.com/nomadexpress/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	UsersHandler      *users.Handler
	StatusHandler     *status.Handler
	GoodsHandler      *goods.Handler
	DeliveriesHandler *deliveries.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.UsersHandler.MountAuthRoutes)
		r.Route("/users", func(r chi.Router) {
			r.Use(params.UsersHandler.RequireAuth)
			params.UsersHandler.MountRoutes(r)
		})
		r.Route("/statuses", params.StatusHandler.MountRoutes)
		r.Route("/goods", params.GoodsHandler.MountRoutes)
		r.Route("/deliveries", func(r chi.Router) {
			// The aggregator shares the /deliveries prefix with the
			// record store, so its fixed paths mount first.
			params.ReportsHandler.MountRoutes(r)
			params.DeliveriesHandler.MountRoutes(r)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
