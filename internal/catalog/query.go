package catalog

import (
	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

// Every query reads the current snapshot exactly once.

// All returns the whole current snapshot.
func (c *Catalog) All() *domain.Snapshot {
	return c.index.Current()
}

func (c *Catalog) Game() []domain.GameVersion {
	return c.index.Current().Game
}

func (c *Catalog) Loaders() []domain.LoaderVersion {
	return c.index.Current().Loaders
}

func (c *Catalog) Installers() []domain.InstallerVersion {
	return c.index.Current().Installers
}

// Mappings returns every mapping, or only those of gameVersion when it is non-empty.
func (c *Catalog) Mappings(gameVersion string) []domain.MappingVersion {
	s := c.index.Current()
	if gameVersion == "" {
		return s.Mappings
	}
	return s.MappingsFor(gameVersion)
}

// Intermediary returns every intermediary, or only those of gameVersion when it is non-empty.
func (c *Catalog) Intermediary(gameVersion string) []domain.IntermediaryVersion {
	s := c.index.Current()
	if gameVersion == "" {
		return s.Intermediary
	}
	return s.IntermediariesFor(gameVersion)
}

// LoadersFor pairs every loader with the intermediary of gameVersion (exact
// match). ok is false when gameVersion has no intermediary.
func (c *Catalog) LoadersFor(gameVersion string) (loaders []domain.LoaderVersion, inter domain.IntermediaryVersion, ok bool) {
	s := c.index.Current()
	inter, ok = s.IntermediaryFor(gameVersion, false)
	if !ok {
		return nil, domain.IntermediaryVersion{}, false
	}
	return s.Loaders, inter, true
}

// Resolve finds loaderVersion (exact) and the intermediary of gameVersion
// (case-insensitive). Misses return a domain.ErrNotFound error.
func (c *Catalog) Resolve(gameVersion, loaderVersion string) (domain.LoaderVersion, domain.IntermediaryVersion, error) {
	s := c.index.Current()

	loader, ok := s.Loader(loaderVersion)
	if !ok {
		return domain.LoaderVersion{}, domain.IntermediaryVersion{},
			domain.NotFoundf("No loader version %s found for %s", loaderVersion, gameVersion)
	}

	inter, ok := s.IntermediaryFor(gameVersion, true)
	if !ok {
		return domain.LoaderVersion{}, domain.IntermediaryVersion{},
			domain.NotFoundf("No mappings found for %s", gameVersion)
	}
	return loader, inter, nil
}

// Ready reports whether a snapshot was published.
func (c *Catalog) Ready() bool {
	return c.index.Ready()
}
