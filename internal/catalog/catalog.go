// Package catalog builds and serves the version catalog: five collections
// pulled from maven repositories and the vendor manifest, published together
// as one immutable snapshot.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/index"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/launchermeta"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/maven"
)

// Source names used in logs and metrics.
const (
	SourceLoader       = "loader"
	SourceMappings     = "mappings"
	SourceIntermediary = "intermediary"
	SourceInstaller    = "installer"
	SourceVendor       = "launchermeta"
)

// VersionLister is the part of a maven repository the catalog reads.
type VersionLister interface {
	FetchVersions(ctx context.Context, c maven.Coordinate) *maven.Metadata
}

// ManifestFetcher is the part of the vendor client the catalog reads.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context) (*launchermeta.Manifest, error)
}

// Mirror receives every published snapshot. Failures are logged only.
type Mirror interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot, publishedAt time.Time, generation uint64) error
}

// Coordinates names the four maven components the catalog tracks.
type Coordinates struct {
	Loader       maven.Coordinate
	Installer    maven.Coordinate
	Mappings     maven.Coordinate
	Intermediary maven.Coordinate
}

// Source returns the source name for c, or "" if c is not tracked.
func (c Coordinates) Source(coord maven.Coordinate) string {
	switch coord {
	case c.Loader:
		return SourceLoader
	case c.Installer:
		return SourceInstaller
	case c.Mappings:
		return SourceMappings
	case c.Intermediary:
		return SourceIntermediary
	}
	return ""
}

// Catalog owns the rebuild and answers queries against the current snapshot.
type Catalog struct {
	primary VersionLister // loader, installer
	mirror  VersionLister // mappings, intermediary
	vendor  ManifestFetcher
	coords  Coordinates

	index    *index.MemoryIndex
	coverage atomic.Pointer[Coverage]
	store    Mirror
	metrics  *metrics.Metrics
	logger   logger.Logger
}

type Option func(*Catalog)

// WithMirror writes every published snapshot to m.
func WithMirror(m Mirror) Option {
	return func(c *Catalog) { c.store = m }
}

// WithMetrics records catalog sizes and vendor failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

func New(primary, mirror VersionLister, vendor ManifestFetcher, coords Coordinates, idx *index.MemoryIndex, log logger.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		primary: primary,
		mirror:  mirror,
		vendor:  vendor,
		coords:  coords,
		index:   idx,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetched holds the raw results of one cycle.
type fetched struct {
	loaders      *maven.Metadata
	mappings     *maven.Metadata
	intermediary *maven.Metadata
	installers   *maven.Metadata
	manifest     *launchermeta.Manifest
}

// Rebuild fetches every source in parallel, derives a new snapshot and
// publishes it. A vendor manifest failure aborts the cycle and leaves the
// current snapshot untouched; maven failures degrade to empty listings.
func (c *Catalog) Rebuild(ctx context.Context) error {
	start := time.Now()

	raw, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	snap := Build(raw.loaders, raw.mappings, raw.intermediary, raw.installers, raw.manifest.Releases())

	cov := newCoverage(raw.manifest, raw.intermediary)

	c.index.Publish(snap)
	c.coverage.Store(&cov)
	publishedAt := c.index.GetLastReload()
	counts := snap.Counts()
	counts[CollectionSupported] = cov.Supported
	counts[CollectionVendorReleases] = cov.VendorReleases

	if c.metrics != nil {
		c.metrics.SetCatalogCounts(counts)
	}

	c.logger.Info("catalog rebuilt",
		logger.Int("game", counts["game"]),
		logger.Int("loaders", counts["loaders"]),
		logger.Int("mappings", counts["mappings"]),
		logger.Int("intermediary", counts["intermediary"]),
		logger.Int("installers", counts["installers"]),
		logger.Int("supported", cov.Supported),
		logger.Duration("took", time.Since(start)))

	if c.store != nil {
		if err := c.store.SaveSnapshot(ctx, snap, publishedAt, c.index.Generation()); err != nil {
			c.logger.Warn("failed to mirror snapshot to redis", logger.Error(err))
		}
	}
	return nil
}

func (c *Catalog) fetch(ctx context.Context) (*fetched, error) {
	var (
		raw fetched
		g   errgroup.Group
	)

	g.Go(func() error {
		raw.loaders = c.primary.FetchVersions(ctx, c.coords.Loader)
		return nil
	})
	g.Go(func() error {
		raw.mappings = c.mirror.FetchVersions(ctx, c.coords.Mappings)
		return nil
	})
	g.Go(func() error {
		raw.intermediary = c.mirror.FetchVersions(ctx, c.coords.Intermediary)
		return nil
	})
	g.Go(func() error {
		raw.installers = c.primary.FetchVersions(ctx, c.coords.Installer)
		return nil
	})
	g.Go(func() error {
		m, err := c.vendor.FetchManifest(ctx)
		if err != nil {
			if c.metrics != nil {
				c.metrics.SourceFailed(SourceVendor)
			}
			c.logger.Error("failed to load vendor version manifest",
				logger.String("source", SourceVendor),
				logger.Error(err))
			return fmt.Errorf("%s: %w", SourceVendor, err)
		}
		raw.manifest = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &raw, nil
}

// Build derives a snapshot from one cycle's raw listings. It performs no I/O.
func Build(loaders, mappings, intermediary, installers *maven.Metadata, releases []domain.ProductRelease) *domain.Snapshot {
	snap := domain.EmptySnapshot()

	for _, a := range loaders.Artifacts() {
		snap.Loaders = append(snap.Loaders, domain.LoaderVersion{
			Version: a.Version,
			Maven:   a.MavenID(),
			URL:     a.JarURL(),
		})
	}

	for _, a := range mappings.Artifacts() {
		snap.Mappings = append(snap.Mappings, domain.ParseMapping(a.MavenID(), a.Version))
	}

	inter := make([]domain.IntermediaryVersion, 0, intermediary.Len())
	for _, a := range intermediary.Artifacts() {
		inter = append(inter, domain.IntermediaryVersion{
			Maven:   a.MavenID(),
			Version: a.Version,
			Stable:  true,
		})
	}
	snap.Game, snap.Intermediary = deriveGameVersions(inter, releases)

	for _, a := range installers.Artifacts() {
		snap.Installers = append(snap.Installers, domain.InstallerVersion{
			URL:     a.JarURL(),
			Maven:   a.MavenID(),
			Version: a.Version,
			Stable:  true,
		})
	}

	return snap
}
