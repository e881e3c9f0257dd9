package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/maven"
)

var emptyDescriptor = json.RawMessage(`{}`)

// Reasons a descriptor falls back to emptyDescriptor.
const (
	reasonInvalidID   = "invalid_id"
	reasonMissing     = "missing"
	reasonUnreachable = "unreachable"
	reasonInvalid     = "invalid"
)

// LoaderInfo pairs a loader with an intermediary and carries the loader's
// published launcher descriptor verbatim.
type LoaderInfo struct {
	Loader       domain.LoaderVersion       `json:"loader"`
	Intermediary domain.IntermediaryVersion `json:"intermediary"`
	LauncherMeta json.RawMessage            `json:"launcherMeta"`
}

// DescriptorURL maps "group:artifact:version" to the descriptor json in the
// primary repository.
func (b *Builder) DescriptorURL(mavenID string) (string, error) {
	coord, version, err := maven.ParseID(mavenID)
	if err != nil {
		return "", err
	}
	return b.primary.Artifact(coord, version).URL("json"), nil
}

// LoaderInfo fetches the loader descriptor and pairs it with inter. A missing
// or unreadable descriptor becomes {}.
func (b *Builder) LoaderInfo(ctx context.Context, loader domain.LoaderVersion, inter domain.IntermediaryVersion) LoaderInfo {
	return LoaderInfo{
		Loader:       loader,
		Intermediary: inter,
		LauncherMeta: b.descriptor(ctx, loader.Maven),
	}
}

// LoaderInfos builds one LoaderInfo per loader, in loader order, fetching
// descriptors with bounded concurrency.
func (b *Builder) LoaderInfos(ctx context.Context, loaders []domain.LoaderVersion, inter domain.IntermediaryVersion) ([]LoaderInfo, error) {
	infos := make([]LoaderInfo, len(loaders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, l := range loaders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			infos[i] = b.LoaderInfo(gctx, l, inter)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loader infos: %w", err)
	}
	return infos, nil
}

func (b *Builder) descriptor(ctx context.Context, mavenID string) json.RawMessage {
	url, err := b.DescriptorURL(mavenID)
	if err != nil {
		b.descriptorFailed(reasonInvalidID, mavenID, "", err)
		return emptyDescriptor
	}

	data, err := b.client.Get(ctx, url)
	if err != nil {
		reason := reasonUnreachable
		if httpclient.IsNotFound(err) {
			reason = reasonMissing
		}
		b.descriptorFailed(reason, mavenID, url, err)
		return emptyDescriptor
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		b.descriptorFailed(reasonInvalid, mavenID, url, fmt.Errorf("descriptor is not a json object"))
		return emptyDescriptor
	}
	return json.RawMessage(data)
}

func (b *Builder) descriptorFailed(reason, mavenID, url string, err error) {
	b.logger.Warn("failed to load loader descriptor, using empty document",
		logger.String("source", "descriptor"),
		logger.String("reason", reason),
		logger.String("maven", mavenID),
		logger.String("url", url),
		logger.Error(err))
	if b.metrics != nil {
		b.metrics.DescriptorFailed(reason)
	}
}
