package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sbos/internal/platform/middleware"
	"sbos/pkg/platform/middleware/metadata"
	"sbos/pkg/platform/middleware/requesttime"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	App    *AppHandler
	Admin  *AdminHandler
	Auth   middleware.AdminValidator
	Gather prometheus.Gatherer
	Logger *slog.Logger
}

// NewRouter wires every endpoint. /admin routes sit behind RequireAdmin.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.AccessLog(cfg.Logger))

	cfg.Admin.RegisterPublic(r)
	cfg.App.Register(r)
	if cfg.Gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gather, promhttp.HandlerOpts{}))
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.Auth, cfg.Logger))
		cfg.Admin.RegisterAdmin(r)
	})
	return r
}
