package deps

import (
	"time"

	"github.com/MrSnakeDoc/flintmeta/internal/catalog"
	"github.com/MrSnakeDoc/flintmeta/internal/index"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
	"github.com/MrSnakeDoc/flintmeta/internal/profile"
	"github.com/MrSnakeDoc/flintmeta/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/flintmeta/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time     // for testing, defaults to time.Now
	AdminCIDRS    []string             // IPs allowed to access operations endpoints
	TrustProxy    bool                 // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CacheMaxAge   time.Duration        // Cache-Control max-age of /v1/versions responses
	Catalog       *catalog.Catalog     // Queries against the published snapshot
	Profiles      *profile.Builder     // Loader infos and launch profiles
	MemoryIndex   *index.MemoryIndex   // Published snapshot and its metadata
	Metrics       *metrics.Metrics     // Prometheus registry (nil disables /metrics)
	Refresher     *scheduler.Refresher // Refresh state for /infra (may be nil)
	Store         *redisstore.Store    // Snapshot mirror (nil when disabled)
	ReloadTrigger chan struct{}        // Channel to trigger a manual catalog refresh
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
