package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
)

// Rebuilder runs one catalog rebuild cycle.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Refresher states.
const (
	StateIdle       = "idle"
	StateRefreshing = "refreshing"
)

// Status is a point-in-time view of the refresher.
type Status struct {
	State       string    `json:"state"`
	Interval    string    `json:"interval"`
	Cycles      uint64    `json:"cycles"`
	LastAttempt time.Time `json:"lastAttempt,omitzero"`
	LastSuccess time.Time `json:"lastSuccess,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
}

// Refresher rebuilds the catalog on a fixed interval and on demand.
type Refresher struct {
	catalog       Rebuilder
	logger        logger.Logger
	metrics       *metrics.Metrics
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	// cycles never overlap
	cycleMu    sync.Mutex
	refreshing atomic.Bool
	cycles     atomic.Uint64

	statusMu    sync.RWMutex
	lastAttempt time.Time
	lastSuccess time.Time
	lastErr     error
}

// NewRefresher creates a refresher. manualTrigger may be shared with the
// reload endpoint; m may be nil.
func NewRefresher(
	catalog Rebuilder,
	log logger.Logger,
	m *metrics.Metrics,
	interval time.Duration,
	manualTrigger chan struct{},
) *Refresher {
	if manualTrigger == nil {
		manualTrigger = make(chan struct{}, 1)
	}
	return &Refresher{
		catalog:       catalog,
		logger:        log,
		metrics:       m,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the first rebuild synchronously, then keeps refreshing in the
// background until ctx is done or Stop is called. A failed first rebuild is
// returned and nothing is scheduled.
func (r *Refresher) Start(ctx context.Context) error {
	if err := r.refresh(ctx, false); err != nil {
		return fmt.Errorf("initial refresh failed: %w", err)
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = r.refresh(ctx, true)
			case <-r.manualTrigger:
				r.logger.Info("manual refresh triggered")
				_ = r.refresh(ctx, true)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop ends the background loop. Safe to call more than once.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Trigger requests an out-of-band refresh. It reports false when one is
// already pending.
func (r *Refresher) Trigger() bool {
	select {
	case r.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Refreshing reports whether a cycle is in progress.
func (r *Refresher) Refreshing() bool {
	return r.refreshing.Load()
}

// Status returns the current state and the outcome of the last cycles.
func (r *Refresher) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()

	s := Status{
		State:       StateIdle,
		Interval:    r.interval.String(),
		Cycles:      r.cycles.Load(),
		LastAttempt: r.lastAttempt,
		LastSuccess: r.lastSuccess,
	}
	if r.refreshing.Load() {
		s.State = StateRefreshing
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	return s
}

// refresh runs one cycle. A scheduled failure keeps the published snapshot
// and is only reported.
func (r *Refresher) refresh(ctx context.Context, scheduled bool) error {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	r.refreshing.Store(true)
	defer r.refreshing.Store(false)

	start := time.Now()
	r.logger.Info("refreshing version catalog", logger.Bool("scheduled", scheduled))

	err := r.catalog.Rebuild(ctx)
	took := time.Since(start)
	r.cycles.Add(1)

	r.statusMu.Lock()
	r.lastAttempt = start
	r.lastErr = err
	if err == nil {
		r.lastSuccess = start
	}
	r.statusMu.Unlock()

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
		r.logger.Info("version catalog refreshed", logger.Duration("took", took))
	case scheduled:
		outcome = metrics.OutcomeSkipped
		r.logger.Error("refresh failed, keeping previous snapshot",
			logger.Duration("took", took),
			logger.Error(err))
	default:
		outcome = metrics.OutcomeFailed
		r.logger.Error("refresh failed", logger.Duration("took", took), logger.Error(err))
	}

	if r.metrics != nil {
		r.metrics.ObserveRefresh(outcome, took)
	}
	return err
}
