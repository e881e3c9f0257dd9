package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/flintmeta/internal/catalog"
	"github.com/MrSnakeDoc/flintmeta/internal/httpserver/deps"
	"github.com/MrSnakeDoc/flintmeta/internal/scheduler"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	LastMirrored string `json:"last_mirrored,omitempty"`
	Error        string `json:"error,omitempty"`
}

type catalogStatus struct {
	OK                 bool              `json:"ok"`
	Generation         uint64            `json:"generation"`
	LastPublish        string            `json:"last_publish"`
	SnapshotAgeSeconds *float64          `json:"snapshot_age_seconds,omitempty"`
	Entries            map[string]int    `json:"entries"`
	Coverage           *catalog.Coverage `json:"coverage,omitempty"`
}

type infraResponse struct {
	Status    string            `json:"status"`
	Catalog   catalogStatus     `json:"catalog"`
	Refresher *scheduler.Status `json:"refresher,omitempty"`
	Redis     componentStatus   `json:"redis"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		snap := d.MemoryIndex.Current()
		cat := catalogStatus{
			OK:          d.MemoryIndex.Ready(),
			Generation:  d.MemoryIndex.Generation(),
			LastPublish: "never",
			Entries:     snap.Counts(),
		}
		if last := d.MemoryIndex.GetLastReload(); !last.IsZero() {
			cat.LastPublish = last.Format(time.RFC3339)
			age := d.Now().Sub(last).Seconds()
			cat.SnapshotAgeSeconds = &age
		}

		if cov, ok := d.Catalog.Coverage(); ok {
			cat.Coverage = &cov
		}

		resp := infraResponse{
			Catalog: cat,
			Redis:   checkRedis(r.Context(), d),
		}
		if d.Refresher != nil {
			st := d.Refresher.Status()
			resp.Refresher = &st
		}
		resp.Status = determineStatus(resp)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func determineStatus(resp infraResponse) string {
	// Nothing published = nothing to serve
	if !resp.Catalog.OK {
		return "critical"
	}

	// Serving a stale snapshot after a failed cycle
	if resp.Refresher != nil && resp.Refresher.LastError != "" {
		return "degraded"
	}

	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "snapshot-mirror-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshot-mirror-unavailable",
			Error:  err.Error(),
		}
	}

	st := componentStatus{
		OK:           true,
		Mode:         "optimal",
		Impact:       "snapshot-mirror-enabled",
		LastMirrored: "never",
	}
	at, ok, err := d.Store.PublishedAt(ctx)
	switch {
	case err != nil:
		st.Error = err.Error()
	case ok:
		st.LastMirrored = at.Format(time.RFC3339)
	}
	return st
}
