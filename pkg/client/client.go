// Package client provides the commerce backend HTTP client used to fetch
// the region directory.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/commercekit/edge-router/pkg/cache"
	"github.com/commercekit/edge-router/pkg/logging"
	"github.com/commercekit/edge-router/pkg/regions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for backend requests.
var (
	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_backend_requests_total",
		Help: "Total backend requests by endpoint and status",
	}, []string{"endpoint", "status"})

	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edge_backend_request_duration_seconds",
		Help:    "Backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	backendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_backend_errors_total",
		Help: "Total backend errors by class",
	}, []string{"class"})
)

const (
	// regionsEndpoint is the backend region listing route.
	regionsEndpoint = "/store/regions"

	// regionsTag labels cached region responses for invalidation.
	regionsTag = "regions"

	// defaultPageSize is the limit sent on paginated region requests.
	defaultPageSize = 100

	// maxPages bounds pagination against a misbehaving backend.
	maxPages = 100
)

// Client talks to the commerce backend's store API.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the backend base URL (required), e.g. "https://api.shop.example".
	BaseURL string

	// PublishableKey is sent as the x-publishable-api-key header (required).
	PublishableKey string

	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration

	// MaxAge is how long cached responses may be reused (default 1h).
	// This is the hint handed to the downstream caching layer.
	MaxAge time.Duration

	// Cache is the optional tagged response cache. Nil disables caching
	// and every call goes to the backend.
	Cache *cache.Manager

	// PageSize overrides the pagination limit (default 100).
	PageSize int
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.PublishableKey == "" {
		return nil, fmt.Errorf("publishable API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cfg.Cache,
		config: cfg,
		logger: logging.NewLogger("backend-client"),
	}, nil
}

// regionsPage is the backend's paginated region listing payload.
type regionsPage struct {
	Regions []regions.Region `json:"regions"`
	Count   int              `json:"count"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// ListRegions fetches every region from the backend, following offset
// pagination until the reported count is collected. It implements
// regions.Fetcher: a non-success status is returned as *regions.StatusError,
// anything else as a wrapped network/parse error. No retries are attempted;
// the caller's next refresh is the retry.
func (c *Client) ListRegions(ctx context.Context) ([]regions.Region, error) {
	var all []regions.Region
	offset := 0

	for page := 0; page < maxPages; page++ {
		result, err := c.fetchRegionsPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, result.Regions...)

		// Backends that don't paginate report Count == 0; a short or empty
		// page also means we are done.
		if len(result.Regions) == 0 || len(all) >= result.Count || len(result.Regions) < c.config.PageSize {
			break
		}
		offset += len(result.Regions)
	}

	c.logger.Debug().
		Int("region_count", len(all)).
		Msg("Fetched region listing")

	return all, nil
}

// fetchRegionsPage returns one page of the region listing, served from the
// tagged response cache when a fresh copy exists.
func (c *Client) fetchRegionsPage(ctx context.Context, offset int) (*regionsPage, error) {
	query := url.Values{
		"limit":  []string{strconv.Itoa(c.config.PageSize)},
		"offset": []string{strconv.Itoa(offset)},
	}
	key := cache.CacheKey{
		Endpoint:    regionsEndpoint,
		QueryParams: query,
		Tag:         regionsTag,
	}

	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Debug().
				Str("key", key.String()).
				Msg("Region page served from response cache")
			return decodeRegionsPage(entry.Data)
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Msg("Response cache get error")
		}
	}

	fetchURL := c.config.BaseURL + regionsEndpoint + "?" + query.Encode()

	startTime := time.Now()
	defer func() {
		backendRequestDuration.WithLabelValues(regionsEndpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-publishable-api-key", c.config.PublishableKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", fetchURL).Msg("Fetching regions from backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		backendErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		backendRequestsTotal.WithLabelValues(regionsEndpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("url", fetchURL).Msg("Backend request failed")
		return nil, fmt.Errorf("fetch regions: %w", err)
	}
	defer resp.Body.Close()

	backendRequestsTotal.WithLabelValues(regionsEndpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		backendErrorsTotal.WithLabelValues(string(classifyStatus(resp.StatusCode))).Inc()
		c.logger.Warn().
			Str("url", fetchURL).
			Int("status", resp.StatusCode).
			Msg("Backend returned non-success status")
		return nil, &regions.StatusError{StatusCode: resp.StatusCode, URL: fetchURL}
	}

	// Cache the raw body before decoding so the stored copy matches the wire.
	if c.cache != nil {
		if entry, err := cache.ResponseToEntry(resp, c.config.MaxAge); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache region response")
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		backendErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read regions response: %w", err)
	}

	return decodeRegionsPage(body)
}

func decodeRegionsPage(data []byte) (*regionsPage, error) {
	var page regionsPage
	if err := json.Unmarshal(data, &page); err != nil {
		backendErrorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
		return nil, fmt.Errorf("decode regions response: %w", err)
	}
	return &page, nil
}

// InvalidateRegions drops every cached region page.
func (c *Client) InvalidateRegions(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.InvalidateTag(ctx, regionsTag)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
