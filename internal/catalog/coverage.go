package catalog

import (
	"github.com/MrSnakeDoc/flintmeta/internal/sources/launchermeta"
)

// Extra catalog_entries collections describing vendor coverage.
const (
	CollectionSupported      = "supported"
	CollectionVendorReleases = "vendor_releases"
)

// Coverage relates the vendor list to the intermediary listing fetched in the
// same cycle: how many vendor releases can actually be modded.
type Coverage struct {
	VendorReleases  int    `json:"vendor_releases"`
	Supported       int    `json:"supported"`
	LatestSupported string `json:"latest_supported,omitempty"` // newest stable release with mappings
}

func newCoverage(m *launchermeta.Manifest, intermediary launchermeta.Membership) Coverage {
	supported := m.Supported(intermediary)
	cov := Coverage{
		VendorReleases: len(m.Versions),
		Supported:      len(supported),
	}
	for _, g := range supported {
		if g.Stable {
			cov.LatestSupported = g.Version
			break
		}
	}
	return cov
}

// Coverage returns the coverage of the last published cycle, false before
// the first publish.
func (c *Catalog) Coverage() (Coverage, bool) {
	cov := c.coverage.Load()
	if cov == nil {
		return Coverage{}, false
	}
	return *cov, true
}
