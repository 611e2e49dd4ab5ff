package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/farmdeck-erp/farmdeck-erp/internal/gari/batches"
	garisales "github.com/farmdeck-erp/farmdeck-erp/internal/gari/sales"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/boreholes"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/farms"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/greenhouses"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/sites"
	"github.com/farmdeck-erp/farmdeck-erp/internal/observability"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/customers"
	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/orders"
	"github.com/farmdeck-erp/farmdeck-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	FarmsHandler      *farms.Handler
	SitesHandler      *sites.Handler
	GreenhouseHandler *greenhouses.Handler
	BoreholeHandler   *boreholes.Handler
	CycleHandler      *cycles.Handler
	HarvestHandler    *harvests.Handler
	CustomerHandler   *customers.Handler
	OrderHandler      *orders.Handler
	GariBatchHandler  *batches.Handler
	GariSaleHandler   *garisales.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Farmdeck defaults.
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

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.FarmsHandler != nil {
			r.Route("/farms", params.FarmsHandler.MountRoutes)
		}
		if params.SitesHandler != nil {
			r.Route("/sites", params.SitesHandler.MountRoutes)
		}
		if params.GreenhouseHandler != nil {
			r.Route("/greenhouses", params.GreenhouseHandler.MountRoutes)
		}
		if params.BoreholeHandler != nil {
			r.Route("/boreholes", params.BoreholeHandler.MountRoutes)
		}
		if params.CycleHandler != nil {
			r.Route("/production-cycles", params.CycleHandler.MountRoutes)
		}
		if params.HarvestHandler != nil {
			r.Route("/harvest-records", params.HarvestHandler.MountRoutes)
		}
		if params.CustomerHandler != nil {
			r.Route("/customers", params.CustomerHandler.MountRoutes)
		}
		if params.OrderHandler != nil {
			r.Route("/sales-orders", params.OrderHandler.MountRoutes)
		}
		if params.GariBatchHandler != nil {
			r.Route("/gari-batches", params.GariBatchHandler.MountRoutes)
		}
		if params.GariSaleHandler != nil {
			r.Route("/gari-sales", params.GariSaleHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
