package redis

const (
	// KeyPrefixCollection is the prefix for mirrored collection keys
	KeyPrefixCollection = "meta:versions:"
	// KeyPublishedAt holds the RFC3339 publication time of the mirrored snapshot
	KeyPublishedAt = "meta:versions:published_at"
	// KeyGeneration holds the publication counter of the mirrored snapshot
	KeyGeneration = "meta:versions:generation"
	// ChannelEvents receives one message per mirrored snapshot
	ChannelEvents = "meta:versions:events"
)

// CollectionKey returns the Redis key for a collection by wire name
func CollectionKey(collection string) string {
	return KeyPrefixCollection + collection
}
