package domain

import (
	"strconv"
	"strings"
)

// MappingSeparator splits a mapping version into its game version and build number.
const MappingSeparator = "+build."

// ─────────────────────────────
// Vendor data
// ─────────────────────────────

// ProductRelease is one entry of the vendor's version manifest.
type ProductRelease struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IsRelease reports whether the release type is "release", ignoring case.
func (p ProductRelease) IsRelease() bool {
	return strings.EqualFold(p.Type, "release")
}

// ─────────────────────────────
// Published catalog entries
// ─────────────────────────────

// GameVersion is a product release the catalog exposes.
type GameVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// LoaderVersion is one published loader build.
type LoaderVersion struct {
	Version string `json:"version"`
	Maven   string `json:"maven"`
	URL     string `json:"url"`
}

// MappingVersion is a name-mapping ("yarn") release.
//
// GameVersion is the part of Version before MappingSeparator,
// Build the number after it (0 when absent).
type MappingVersion struct {
	GameVersion string `json:"gameVersion"`
	Maven       string `json:"maven"`
	Version     string `json:"version"`
	Separator   string `json:"separator"`
	Build       int    `json:"build"`
	Stable      bool   `json:"stable"`
}

// IntermediaryVersion is an intermediary mapping release. Always stable.
type IntermediaryVersion struct {
	Maven   string `json:"maven"`
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// InstallerVersion is one published installer build. Always stable.
type InstallerVersion struct {
	URL     string `json:"url"`
	Maven   string `json:"maven"`
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// ParseMapping splits raw on the first MappingSeparator.
// A missing separator or a non-numeric build yields build 0.
func ParseMapping(maven, raw string) MappingVersion {
	game, build := raw, 0
	if i := strings.Index(raw, MappingSeparator); i >= 0 {
		game = raw[:i]
		rest := raw[i+len(MappingSeparator):]
		// Only the segment up to a repeated separator is the build number.
		if j := strings.Index(rest, MappingSeparator); j >= 0 {
			rest = rest[:j]
		}
		if n, err := strconv.Atoi(rest); err == nil {
			build = n
		}
	}
	return MappingVersion{
		GameVersion: game,
		Maven:       maven,
		Version:     raw,
		Separator:   MappingSeparator,
		Build:       build,
		Stable:      false,
	}
}
