package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	costinghttp "github.com/comal-erp/comal-erp/internal/costing/http"
	"github.com/comal-erp/comal-erp/internal/masterdata/categories"
	"github.com/comal-erp/comal-erp/internal/masterdata/products"
	"github.com/comal-erp/comal-erp/internal/masterdata/units"
	"github.com/comal-erp/comal-erp/internal/observability"
	"github.com/comal-erp/comal-erp/internal/production"
	"github.com/comal-erp/comal-erp/internal/recipes"
	"github.com/comal-erp/comal-erp/jobs"
	"github.com/comal-erp/comal-erp/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CostingHandler    *costinghttp.Handler
	RecipesHandler    *recipes.Handler
	ProductionHandler *production.Handler
	CategoriesHandler *categories.Handler
	UnitsHandler      *units.Handler
	ProductsHandler   *products.Handler
	ReportHandler     *report.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Comal defaults.
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
		if params.CostingHandler != nil {
			params.CostingHandler.MountRoutes(r)
		}
		if params.RecipesHandler != nil {
			params.RecipesHandler.MountRoutes(r)
		}
		if params.ProductionHandler != nil {
			params.ProductionHandler.MountRoutes(r)
		}
		r.Route("/masterdata", func(r chi.Router) {
			if params.CategoriesHandler != nil {
				params.CategoriesHandler.MountRoutes(r)
			}
			if params.UnitsHandler != nil {
				params.UnitsHandler.MountRoutes(r)
			}
			if params.ProductsHandler != nil {
				params.ProductsHandler.MountRoutes(r)
			}
		})
		if params.ReportHandler != nil {
			r.Route("/reports", params.ReportHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
