package domain

// KeyPrefix namespaces every key fuserank writes to the store.
const KeyPrefix = "fuserank:"

// ItemKey builds the hash key for an item in a collection.
func ItemKey(collection, id string) string {
	return KeyPrefix + collection + ":" + id
}

// IndexName builds the FT index name for a collection.
func IndexName(collection string) string {
	return KeyPrefix + collection + ":idx"
}

// RecentVectorKey builds the KV key holding a user's last fused query vector.
func RecentVectorKey(userID string) string {
	return KeyPrefix + "recent:" + userID
}

// RecommendationCacheKey builds the KV key for a user's cached recommendations.
func RecommendationCacheKey(userID string) string {
	return KeyPrefix + "reco:" + userID
}
