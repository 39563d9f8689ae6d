// Command edge-router serves an e-commerce storefront behind region-aware
// routing: requests without a region-prefixed path are redirected to one,
// everything else passes through to the storefront upstream.
package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/commercekit/edge-router/pkg/cache"
	"github.com/commercekit/edge-router/pkg/client"
	"github.com/commercekit/edge-router/pkg/config"
	"github.com/commercekit/edge-router/pkg/logging"
	"github.com/commercekit/edge-router/pkg/regions"
	"github.com/commercekit/edge-router/pkg/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.NewLogger("main")
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.Environment == "development",
		Output: os.Stderr,
	})
	logger := logging.NewLogger("main")

	var cacheManager *cache.Manager
	if cfg.RedisURL != "" {
		redisClient, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("Invalid Redis URL")
		}
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		cacheManager = cache.NewManager(redisClient)
		logger.Info().Str("redis_url", cfg.RedisURL).Msg("Response cache enabled")
	} else {
		logger.Warn().Msg("REDIS_URL not set, response cache disabled")
	}

	backend, err := client.New(client.Config{
		BaseURL:        cfg.BackendURL,
		PublishableKey: cfg.PublishableAPIKey,
		MaxAge:         cfg.RegionTTL,
		Cache:          cacheManager,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create backend client")
	}

	store := regions.NewStore(regions.Config{
		Fetcher:     backend,
		DefaultCode: cfg.DefaultRegion,
		TTL:         cfg.RegionTTL,
	})

	edge := router.New(router.Config{
		Store:              store,
		DefaultCode:        cfg.DefaultRegion,
		GeoHeader:          cfg.GeoCountryHeader,
		StrictSegmentMatch: cfg.StrictRegionMatch,
	})

	// Warm the directory before taking traffic. Failure is tolerated, the
	// first request triggers another refresh.
	store.EnsureFresh(context.Background())

	storefront, err := storefrontHandler(cfg.StorefrontUpstream)
	if err != nil {
		logger.Fatal().Err(err).Str("upstream", cfg.StorefrontUpstream).Msg("Invalid storefront upstream")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", healthHandler(cfg.Environment))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", edge.Middleware(storefront))

	addr := ":" + cfg.Port
	logger.Info().
		Str("addr", addr).
		Str("default_region", cfg.DefaultRegion).
		Str("environment", cfg.Environment).
		Msg("Starting edge router")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// storefrontHandler proxies pass-through requests to the storefront upstream.
// Without an upstream a placeholder answers, which keeps the redirect logic
// usable in local development.
func storefrontHandler(upstream string) (http.Handler, error) {
	if upstream == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("storefront upstream not configured\n"))
		}), nil
	}

	target, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	return proxy, nil
}

// newRedisClient accepts both "host:port" and "redis://" notations.
func newRedisClient(redisURL string) (*redis.Client, error) {
	if strings.Contains(redisURL, "://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}
