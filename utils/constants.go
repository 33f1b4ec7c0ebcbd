package utils

// Pagination constants
const (
	// DefaultPage is the page used when the caller does not send one
	DefaultPage = 1

	// DefaultPageSize is the page size used when the caller does not send one
	DefaultPageSize = 10

	// MaxPageSize caps the number of cats returned per page
	MaxPageSize = 100
)

// Cache constants
const (
	// CatCacheKeyPrefix prefixes the Redis key for a single cat lookup
	CatCacheKeyPrefix = "nekomata:cat:"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Context keys for request-scoped values
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	IPAddressKey ContextKey = "ip_address"
	UserAgentKey ContextKey = "user_agent"
	EndpointKey  ContextKey = "endpoint"
)
