package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/handlers"
)

func init() { Register(registerVersions) }

func registerVersions(r chi.Router, d deps.Deps) {
	r.Route("/v1/versions", func(r chi.Router) {
		r.Get("/", handlers.AllVersions(d))
		r.Get("/game", handlers.GameVersions(d))
		r.Get("/yarn", handlers.Yarn(d))
		r.Get("/yarn/{gameVersion}", handlers.Yarn(d))
		r.Get("/intermediary", handlers.Intermediary(d))
		r.Get("/intermediary/{gameVersion}", handlers.Intermediary(d))
		r.Get("/loader", handlers.Loaders(d))
		r.Get("/loader/{gameVersion}", handlers.LoadersForGame(d))
		r.Get("/loader/{gameVersion}/{loaderVersion}", handlers.LoaderInfo(d))
		r.Get("/loader/{gameVersion}/{loaderVersion}/profile/json", handlers.LoaderProfile(d))
		r.Get("/installer", handlers.Installers(d))
	})
}
