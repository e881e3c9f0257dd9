package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/profile"
)

const (
	paramGameVersion   = "gameVersion"
	paramLoaderVersion = "loaderVersion"
)

// AllVersions serves the five collections of the current snapshot.
func AllVersions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.All())
	}
}

func GameVersions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.Game())
	}
}

// Yarn serves every mapping release, or those of {gameVersion} when the route has one.
func Yarn(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.Mappings(chi.URLParam(r, paramGameVersion)))
	}
}

// Intermediary serves every intermediary, or those of {gameVersion} when the route has one.
func Intermediary(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.Intermediary(chi.URLParam(r, paramGameVersion)))
	}
}

func Loaders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.Loaders())
	}
}

func Installers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeVersions(w, d, d.Catalog.Installers())
	}
}

// LoadersForGame pairs every loader with the intermediary of {gameVersion}.
// An unknown game version yields an empty list, not an error.
func LoadersForGame(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loaders, inter, ok := d.Catalog.LoadersFor(chi.URLParam(r, paramGameVersion))
		if !ok {
			writeVersions(w, d, []profile.LoaderInfo{})
			return
		}

		infos, err := d.Profiles.LoaderInfos(r.Context(), loaders, inter)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeVersions(w, d, infos)
	}
}

func LoaderInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loader, inter, err := d.Catalog.Resolve(chi.URLParam(r, paramGameVersion), chi.URLParam(r, paramLoaderVersion))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeVersions(w, d, d.Profiles.LoaderInfo(r.Context(), loader, inter))
	}
}

// LoaderProfile serves the launch profile of one loader/game pair, for the
// client unless ?side=server is given.
func LoaderProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		side := domain.SideClient
		if q := r.URL.Query().Get("side"); q != "" {
			parsed, err := domain.ParseSide(q)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			side = parsed
		}

		loader, inter, err := d.Catalog.Resolve(chi.URLParam(r, paramGameVersion), chi.URLParam(r, paramLoaderVersion))
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		p, err := d.Profiles.BuildProfile(d.Profiles.LoaderInfo(r.Context(), loader, inter), side)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeVersions(w, d, p)
	}
}
