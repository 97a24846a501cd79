package cache

// Error codes of the cache stores
const (
	CodeUnavailable = "ERR_CACHE_UNAVAILABLE"
)
