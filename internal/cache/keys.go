package cache

import "strings"

const (
	GlobalKeyPrefix = "dailyspark"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// CategoryListKey is the cache key for the full category listing.
func CategoryListKey() string {
	return GenerateCacheKey("catalog", "categories", "all")
}

// TopicListKey is the cache key for the full topic listing.
func TopicListKey() string {
	return GenerateCacheKey("catalog", "topics", "all")
}

// TopicKey is the cache key for a single topic by id.
func TopicKey(topicID string) string {
	return GenerateCacheKey("catalog", "topic", topicID)
}
