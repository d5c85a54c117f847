package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/mw"
)

func init() { Register(registerHealth) }

// healthz stays open so orchestrators can probe it; the rest is CIDR-gated.
func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
	r.With(restricted(d)...).Get("/infra", handlers.Infra(d))
}
