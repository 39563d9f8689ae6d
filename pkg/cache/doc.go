// Package cache provides a Redis-backed HTTP response cache with tagged
// invalidation for commerce backend responses.
//
// The cache manager implements the downstream caching layer the region fetch
// hints at: responses may be reused for a bounded max-age and are grouped
// under an invalidation tag so a whole family of entries (for example every
// page of the region listing) can be dropped at once.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.CacheKey{
//		Endpoint:    "/store/regions",
//		QueryParams: url.Values{"offset": []string{"0"}},
//		Tag:         "regions",
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the backend
//	}
//
// # HTTP Response Caching
//
//	// Convert HTTP response to cache entry, reusable for up to maxAge
//	entry, err := cache.ResponseToEntry(resp, time.Hour)
//	if err != nil {
//		return err
//	}
//
//	// Store in cache
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Tagged Invalidation
//
//	// Drop every entry stored under the "regions" tag
//	if err := manager.InvalidateTag(ctx, "regions"); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - edge_cache_hits_total{layer="redis"} - Cache hits
//   - edge_cache_misses_total - Cache misses
//   - edge_cache_invalidations_total{tag} - Tag invalidations
//   - edge_cache_errors_total{operation} - Cache operation errors
package cache
