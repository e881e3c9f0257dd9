package maven

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
)

// FailureHook is called whenever FetchVersions degrades to an empty listing.
type FailureHook func(c Coordinate, err error)

// Repository is a Maven-layout repository rooted at a base URL.
type Repository struct {
	baseURL   string
	client    httpclient.Client
	logger    logger.Logger
	onFailure FailureHook
}

type Option func(*Repository)

// WithFailureHook registers a callback for degraded fetches.
func WithFailureHook(h FailureHook) Option {
	return func(r *Repository) { r.onFailure = h }
}

// NewRepository creates a repository. baseURL gets a trailing slash if missing.
func NewRepository(baseURL string, client httpclient.Client, log logger.Logger, opts ...Option) *Repository {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	r := &Repository{
		baseURL: baseURL,
		client:  client,
		logger:  log.With(logger.String("repository", baseURL)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseURL returns the repository root, always ending with "/".
func (r *Repository) BaseURL() string { return r.baseURL }

// MetadataURL returns the location of the version listing for c.
func (r *Repository) MetadataURL(c Coordinate) string {
	return fmt.Sprintf("%s%s/%s/maven-metadata.xml", r.baseURL, c.GroupPath(), c.Artifact)
}

// Artifact builds the artifact view of c at version without any network call.
func (r *Repository) Artifact(c Coordinate, version string) Artifact {
	return Artifact{Coordinate: c, Version: version, baseURL: r.baseURL}
}

// Empty returns a listing with no versions for c.
func (r *Repository) Empty(c Coordinate) *Metadata {
	return newMetadata(r.baseURL, c, nil)
}

// Fetch downloads and parses the version listing of c.
func (r *Repository) Fetch(ctx context.Context, c Coordinate) (*Metadata, error) {
	url := r.MetadataURL(c)
	body, err := r.client.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		_ = body.Close()
	}()

	versions, err := ReadVersions(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return newMetadata(r.baseURL, c, versions), nil
}

// FetchVersions is Fetch with failures degraded to an empty listing.
func (r *Repository) FetchVersions(ctx context.Context, c Coordinate) *Metadata {
	m, err := r.Fetch(ctx, c)
	if err != nil {
		r.logger.Error("failed to load maven metadata, using empty version list",
			logger.String("coordinate", c.String()),
			logger.String("url", r.MetadataURL(c)),
			logger.Error(err))
		if r.onFailure != nil {
			r.onFailure(c, err)
		}
		return r.Empty(c)
	}

	r.logger.Debug("loaded maven metadata",
		logger.String("coordinate", c.String()),
		logger.Int("versions", m.Len()))
	return m
}
