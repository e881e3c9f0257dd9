package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

// DefaultSnapshotTTL is the default TTL for mirrored snapshot keys
const DefaultSnapshotTTL = 10 * time.Minute

// Store mirrors published snapshots to Redis for external consumers.
// The service itself never reads the mirror back.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store. A non-positive ttl uses DefaultSnapshotTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// SnapshotEvent is published on ChannelEvents after each mirror write.
type SnapshotEvent struct {
	Generation  uint64         `json:"generation"`
	PublishedAt time.Time      `json:"published_at"`
	Counts      map[string]int `json:"counts"`
}

// SaveSnapshot writes every collection plus the publication metadata in one
// transaction, then announces it on ChannelEvents.
func (s *Store) SaveSnapshot(ctx context.Context, snap *domain.Snapshot, publishedAt time.Time, generation uint64) error {
	collections := map[string]any{
		"game":         snap.Game,
		"loaders":      snap.Loaders,
		"mappings":     snap.Mappings,
		"intermediary": snap.Intermediary,
		"installers":   snap.Installers,
	}

	payloads := make(map[string][]byte, len(collections))
	for name, v := range collections {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		payloads[name] = data
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range payloads {
			pipe.Set(ctx, CollectionKey(name), data, s.ttl)
		}
		pipe.Set(ctx, KeyPublishedAt, publishedAt.UTC().Format(time.RFC3339), s.ttl)
		pipe.Set(ctx, KeyGeneration, strconv.FormatUint(generation, 10), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	event, err := json.Marshal(SnapshotEvent{
		Generation:  generation,
		PublishedAt: publishedAt.UTC(),
		Counts:      snap.Counts(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot event: %w", err)
	}
	if err := s.client.Publish(ctx, ChannelEvents, event).Err(); err != nil {
		return fmt.Errorf("failed to publish snapshot event: %w", err)
	}
	return nil
}

// PublishedAt returns when the mirrored snapshot was published, and false
// when nothing is mirrored (never written or expired).
func (s *Store) PublishedAt(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, KeyPublishedAt).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get published_at: %w", err)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid published_at %q: %w", raw, err)
	}
	return t, true, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
