package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready      bool   `json:"ready"`
	Generation uint64 `json:"generation"`
}

// Readyz answers 200 once a snapshot was published, 503 before.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.MemoryIndex.Ready()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if ready {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready:      ready,
			Generation: d.MemoryIndex.Generation(),
		})
	}
}
