package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
)

// writeVersions writes v as indented JSON with the public cache header.
func writeVersions(w http.ResponseWriter, d deps.Deps, v any) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(d.CacheMaxAge.Seconds())))
	writeJSON(w, d, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, d deps.Deps, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

// writeError maps lookup misses to 400 with their message, anything else to 500.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d.Logger.Error("request failed",
		logger.String("path", r.URL.Path),
		logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
