package domain

import "strings"

// Snapshot is one complete publication of the five collections.
// It is never mutated after being published; readers share it freely.
type Snapshot struct {
	Game         []GameVersion         `json:"game"`
	Loaders      []LoaderVersion       `json:"loaders"`
	Mappings     []MappingVersion      `json:"mappings"`
	Intermediary []IntermediaryVersion `json:"intermediary"`
	Installers   []InstallerVersion    `json:"installers"`
}

// EmptySnapshot has non-nil empty collections so it encodes as [] rather than null.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Game:         []GameVersion{},
		Loaders:      []LoaderVersion{},
		Mappings:     []MappingVersion{},
		Intermediary: []IntermediaryVersion{},
		Installers:   []InstallerVersion{},
	}
}

// Counts returns the size of every collection keyed by its wire name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"game":         len(s.Game),
		"loaders":      len(s.Loaders),
		"mappings":     len(s.Mappings),
		"intermediary": len(s.Intermediary),
		"installers":   len(s.Installers),
	}
}

// Loader returns the loader whose version equals version exactly.
func (s *Snapshot) Loader(version string) (LoaderVersion, bool) {
	for _, l := range s.Loaders {
		if l.Version == version {
			return l, true
		}
	}
	return LoaderVersion{}, false
}

// IntermediaryFor returns the first intermediary matching gameVersion.
// foldCase selects case-insensitive comparison.
func (s *Snapshot) IntermediaryFor(gameVersion string, foldCase bool) (IntermediaryVersion, bool) {
	for _, i := range s.Intermediary {
		if i.Version == gameVersion || (foldCase && strings.EqualFold(i.Version, gameVersion)) {
			return i, true
		}
	}
	return IntermediaryVersion{}, false
}

// MappingsFor returns every mapping whose game version equals gameVersion.
func (s *Snapshot) MappingsFor(gameVersion string) []MappingVersion {
	out := []MappingVersion{}
	for _, m := range s.Mappings {
		if m.GameVersion == gameVersion {
			out = append(out, m)
		}
	}
	return out
}

// IntermediariesFor returns every intermediary whose version equals gameVersion.
func (s *Snapshot) IntermediariesFor(gameVersion string) []IntermediaryVersion {
	out := []IntermediaryVersion{}
	for _, i := range s.Intermediary {
		if i.Version == gameVersion {
			out = append(out, i)
		}
	}
	return out
}
