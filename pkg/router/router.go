// Package router decides, per request, between passing through to the
// storefront and redirecting to a region-prefixed path.
package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/commercekit/edge-router/pkg/logging"
	"github.com/commercekit/edge-router/pkg/regions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var requestsRoutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "edge_requests_routed_total",
	Help: "Routing decisions by outcome",
}, []string{"decision"}) // "pass", "redirect", "excluded", "fallback"

// DefaultExcludedPrefixes are path prefixes never subject to region routing:
// the API surface, static assets, the image optimizer, and well-known files.
var DefaultExcludedPrefixes = []string{
	"/api/",
	"/static/",
	"/_image/",
	"/favicon.ico",
	"/robots.txt",
	"/images/",
}

// Config holds router configuration.
type Config struct {
	// Store provides the region directory (required).
	Store *regions.Store

	// DefaultCode is the last-resort country code, lowercase (default "us").
	DefaultCode string

	// GeoHeader is the edge-platform geolocation header (default "CF-IPCountry").
	GeoHeader string

	// StrictSegmentMatch replaces the historical substring containment check
	// with exact first-segment equality.
	StrictSegmentMatch bool

	// ExcludedPrefixes overrides DefaultExcludedPrefixes when non-nil.
	ExcludedPrefixes []string
}

// Router is the region-redirect middleware.
type Router struct {
	store       *regions.Store
	defaultCode string
	geoHeader   string
	strict      bool
	excluded    []string
	logger      zerolog.Logger

	// resolve is indirected so tests can inject failures into the routing path.
	resolve func(*http.Request, *regions.Directory) string
}

// New creates a router.
func New(cfg Config) *Router {
	if cfg.Store == nil {
		panic("router: store is required")
	}
	if cfg.DefaultCode == "" {
		cfg.DefaultCode = "us"
	}
	if cfg.GeoHeader == "" {
		cfg.GeoHeader = "CF-IPCountry"
	}
	if cfg.ExcludedPrefixes == nil {
		cfg.ExcludedPrefixes = DefaultExcludedPrefixes
	}

	rt := &Router{
		store:       cfg.Store,
		defaultCode: strings.ToLower(cfg.DefaultCode),
		geoHeader:   cfg.GeoHeader,
		strict:      cfg.StrictSegmentMatch,
		excluded:    cfg.ExcludedPrefixes,
		logger:      logging.NewLogger("router"),
	}
	rt.resolve = rt.Resolve
	return rt
}

// Middleware wraps next with the region-redirect decision. Excluded paths and
// already region-scoped paths pass through unmodified; everything else is
// answered with a 307 to the region-prefixed target. Any unexpected failure
// is recovered and answered with a redirect to the default region, so routing
// always produces a response.
func (rt *Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.isExcluded(r.URL.Path) {
			requestsRoutedTotal.WithLabelValues("excluded").Inc()
			next.ServeHTTP(w, r)
			return
		}

		var passedThrough bool
		defer func() {
			if rec := recover(); rec != nil && !passedThrough {
				target := redirectTarget(originOf(r), rt.defaultCode, r.URL)
				requestsRoutedTotal.WithLabelValues("fallback").Inc()
				rt.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Str("target", target).
					Msg("Routing failed, redirecting to default region")
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			}
		}()

		dir := rt.store.EnsureFresh(r.Context())
		code := rt.resolve(r, dir)

		if rt.isRegionScoped(firstPathSegment(r.URL.Path), code) {
			requestsRoutedTotal.WithLabelValues("pass").Inc()
			passedThrough = true
			next.ServeHTTP(w, r)
			return
		}

		target := redirectTarget(originOf(r), code, r.URL)
		requestsRoutedTotal.WithLabelValues("redirect").Inc()
		rt.logger.Debug().
			Str("country_code", code).
			Str("path", r.URL.Path).
			Str("target", target).
			Msg("Redirecting to region-prefixed path")
		// 307 keeps the method and body on the retried request.
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}

// isRegionScoped reports whether the first path segment already carries the
// country code. The historical check is substring containment, which also
// matches codes embedded in longer segments ("us" in "users"); strict mode
// requires exact equality.
func (rt *Router) isRegionScoped(segment, code string) bool {
	if rt.strict {
		return segment == code
	}
	return strings.Contains(segment, code)
}

func (rt *Router) isExcluded(path string) bool {
	for _, prefix := range rt.excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// redirectTarget builds {origin}/{code}{path}{?query}, dropping the path when
// it is just the root slash.
func redirectTarget(origin, code string, u *url.URL) string {
	path := u.Path
	if path == "/" {
		path = ""
	}
	target := origin + "/" + code + path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}

// originOf reconstructs the request origin from proxy headers, TLS state,
// and the Host header.
func originOf(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host
}
