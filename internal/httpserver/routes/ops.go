package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/mw"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	admin := r.With(mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger))
	admin.Get("/infra", handlers.Infra(d))
	if d.Metrics != nil {
		admin.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
}
