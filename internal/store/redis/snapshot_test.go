package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute), mr, client
}

func testSnapshot() *domain.Snapshot {
	s := domain.EmptySnapshot()
	s.Game = []domain.GameVersion{{Version: "1.20.1", Stable: true}}
	s.Loaders = []domain.LoaderVersion{{Version: "2.0.0", Maven: "net.flintloader:punch:2.0.0"}}
	s.Intermediary = []domain.IntermediaryVersion{{Version: "1.20.1", Maven: "net.fabricmc:intermediary:1.20.1", Stable: true}}
	return s
}

func TestSaveSnapshot(t *testing.T) {
	store, mr, _ := newTestStore(t)
	ctx := context.Background()
	publishedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot(), publishedAt, 3))

	raw, err := mr.Get(CollectionKey("game"))
	require.NoError(t, err)
	var game []domain.GameVersion
	require.NoError(t, json.Unmarshal([]byte(raw), &game))
	assert.Equal(t, []domain.GameVersion{{Version: "1.20.1", Stable: true}}, game)

	raw, err = mr.Get(CollectionKey("mappings"))
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	gen, err := mr.Get(KeyGeneration)
	require.NoError(t, err)
	assert.Equal(t, "3", gen)

	assert.Equal(t, time.Minute, mr.TTL(CollectionKey("loaders")))

	got, ok, err := store.PublishedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, publishedAt.Equal(got))
}

func TestSaveSnapshotPublishesEvent(t *testing.T) {
	store, _, client := newTestStore(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, ChannelEvents)
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot(), time.Now(), 1))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, uint64(1), event.Generation)
	assert.Equal(t, 1, event.Counts["loaders"])
	assert.Equal(t, 0, event.Counts["installers"])
}

func TestPublishedAtMissingAndExpired(t *testing.T) {
	store, mr, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.PublishedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveSnapshot(ctx, testSnapshot(), time.Now(), 1))
	mr.FastForward(2 * time.Minute)

	_, ok, err = store.PublishedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "mirror should expire after its TTL")
}

func TestSaveSnapshotRedisDown(t *testing.T) {
	store, mr, _ := newTestStore(t)
	mr.Close()

	err := store.SaveSnapshot(context.Background(), testSnapshot(), time.Now(), 1)
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
