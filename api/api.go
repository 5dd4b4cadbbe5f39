// @title sessiongate API
// @description sessiongate API

// @BasePath /api/
package api

const (
	// PathQueryPath executes a query in a pooled vendor session, the tenant is the last path segment
	PathQueryPath = "/api/query/{tenant}"

	// PathCacheStatsPath returns the session cache state
	PathCacheStatsPath = "/api/cache/stats"

	// PathCacheDrainPath closes all idle sessions
	PathCacheDrainPath = "/api/cache/drain"
)

// CacheStats is the state of the session cache
type CacheStats struct {
	// Number of idle sessions
	Entries int `json:"entries"`
	// Number of distinct vendor configurations seen since start
	Keys int `json:"keys"`
	// Lifespan of an idle session in seconds
	LifespanSec float64 `json:"lifespanSec"`
}

// ErrorResponse is returned as body of failed API requests
type ErrorResponse struct {
	Error string `json:"error"`
}
