package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/finance"
	"github.com/gerai-erp/gerai/internal/importer"
	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/pos"
	"github.com/gerai-erp/gerai/internal/purchasing"
	"github.com/gerai-erp/gerai/internal/reports"
	"github.com/gerai-erp/gerai/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	LedgerHandler     *ledger.Handler
	CatalogHandler    *catalog.Handler
	PurchasingHandler *purchasing.Handler
	POSHandler        *pos.Handler
	FinanceHandler    *finance.Handler
	ReportsHandler    *reports.Handler
	ImportHandler     *importer.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Gerai defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.CatalogHandler != nil {
			r.Route("/catalog", params.CatalogHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			r.Route("/stock", params.LedgerHandler.MountRoutes)
		}
		if params.PurchasingHandler != nil {
			r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
		}
		if params.POSHandler != nil {
			r.Route("/pos", params.POSHandler.MountRoutes)
		}
		if params.FinanceHandler != nil {
			r.Route("/finance", params.FinanceHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.ImportHandler != nil {
			r.Route("/import", params.ImportHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
