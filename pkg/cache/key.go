package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cached backend response.
type CacheKey struct {
	// Endpoint is the backend endpoint path (e.g., "/store/regions")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"offset": "100"})
	QueryParams url.Values

	// Tag is the invalidation label the entry is grouped under (e.g., "regions")
	Tag string
}

// String generates a deterministic cache key string.
// Format: edge:endpoint:query1=val1:query2=val2:tag=regions
//
// Example:
//
//	edge:store/regions:limit=100:offset=0:tag=regions
func (k CacheKey) String() string {
	parts := []string{"edge"}

	// Add endpoint (normalize path)
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	if k.Tag != "" {
		parts = append(parts, "tag="+k.Tag)
	}

	return strings.Join(parts, ":")
}

// tagIndexKey is the Redis set that tracks every key stored under a tag.
func tagIndexKey(tag string) string {
	return "edge:tag:" + tag
}
