package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkjump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkjump/internal/httpserver/handlers"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	r.Route("/links", func(r chi.Router) {
		r.With(limited(d)...).Post("/resolve", handlers.ResolveLink(d))
		r.With(restricted(d)...).Get("/{id}", handlers.GetLink(d))
		r.With(restricted(d)...).Get("/{id}/handler", handlers.GetLinkHandler(d))
		r.With(limited(d)...).Post("/{id}/open", handlers.OpenLink(d))
	})
	r.With(limited(d)...).Post("/handlers/resolve", handlers.ResolveHandler(d))
}
