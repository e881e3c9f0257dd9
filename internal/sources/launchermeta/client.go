// Package launchermeta reads the game vendor's version manifest, the ground
// truth for which game versions exist and how they are ordered.
package launchermeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
)

// Manifest is the vendor's version_manifest.json document.
type Manifest struct {
	Latest   Latest    `json:"latest"`
	Versions []Version `json:"versions"`
}

type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type Version struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
	Time        string `json:"time,omitempty"`
	ReleaseTime string `json:"releaseTime,omitempty"`
}

// Membership is any version set, typically a maven listing.
type Membership interface {
	Contains(version string) bool
}

// Releases returns the manifest entries in manifest order.
func (m *Manifest) Releases() []domain.ProductRelease {
	out := make([]domain.ProductRelease, 0, len(m.Versions))
	for _, v := range m.Versions {
		out = append(out, domain.ProductRelease{ID: v.ID, Type: v.Type})
	}
	return out
}

// Supported returns, in manifest order, the releases whose id is in set.
func (m *Manifest) Supported(set Membership) []domain.GameVersion {
	out := []domain.GameVersion{}
	for _, v := range m.Versions {
		if set.Contains(v.ID) {
			out = append(out, domain.GameVersion{
				Version: v.ID,
				Stable:  domain.ProductRelease{ID: v.ID, Type: v.Type}.IsRelease(),
			})
		}
	}
	return out
}

// Client fetches the manifest from a fixed URL.
type Client struct {
	url  string
	http httpclient.Client
}

func NewClient(url string, http httpclient.Client) *Client {
	return &Client{url: url, http: http}
}

// FetchManifest downloads and decodes the manifest. There is no lenient
// fallback: without it no catalog can be built.
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	body, err := c.http.Open(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch version manifest %s: %w", c.url, err)
	}
	defer func() {
		_ = body.Close()
	}()

	var m Manifest
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode version manifest %s: %w", c.url, err)
	}
	if m.Versions == nil {
		return nil, errors.New("version manifest has no versions array")
	}
	return &m, nil
}
