package regions

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/commercekit/edge-router/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultTTL is the region directory freshness window.
const DefaultTTL = time.Hour

// Config holds the store configuration.
type Config struct {
	// Fetcher retrieves regions from the commerce backend (required).
	Fetcher Fetcher

	// DefaultCode is the configured default region code, lowercase (default "us").
	DefaultCode string

	// TTL is the freshness window (default DefaultTTL).
	TTL time.Duration

	// SingleFlight gates refresh to at most one in-flight fetch. Off by
	// default: redundant refreshes are idempotent and last-writer-wins.
	SingleFlight bool

	// Clock overrides time.Now (for tests).
	Clock func() time.Time
}

// Store owns the process-wide region directory. Request goroutines share it;
// the current snapshot is swapped atomically on refresh and the fallback
// region is set at most once per process lifetime.
type Store struct {
	fetcher      Fetcher
	defaultCode  string
	ttl          time.Duration
	singleFlight bool
	clock        func() time.Time
	logger       zerolog.Logger

	current  atomic.Pointer[Directory]
	fallback atomic.Pointer[Region]
	inflight atomic.Bool
}

// NewStore creates a region directory store.
func NewStore(cfg Config) *Store {
	if cfg.Fetcher == nil {
		panic("regions: fetcher is required")
	}
	if cfg.DefaultCode == "" {
		cfg.DefaultCode = "us"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	s := &Store{
		fetcher:      cfg.Fetcher,
		defaultCode:  cfg.DefaultCode,
		ttl:          cfg.TTL,
		singleFlight: cfg.SingleFlight,
		clock:        cfg.Clock,
		logger:       logging.NewLogger("regions"),
	}
	s.current.Store(emptyDirectory)
	return s
}

// DefaultCode returns the configured default region code.
func (s *Store) DefaultCode() string {
	return s.defaultCode
}

// Snapshot returns the current directory without triggering a refresh.
func (s *Store) Snapshot() *Directory {
	return s.current.Load()
}

// EnsureFresh returns the current directory, refreshing it first when it is
// empty or older than the freshness window. It never returns an error: on any
// failure the existing (possibly empty or stale) snapshot is served, falling
// back to the fallback region's countries when nothing else is available.
func (s *Store) EnsureFresh(ctx context.Context) *Directory {
	dir := s.current.Load()
	now := s.clock()

	if dir.Len() > 0 && now.Sub(dir.UpdatedAt()) < s.ttl {
		return dir
	}

	if s.singleFlight {
		if !s.inflight.CompareAndSwap(false, true) {
			// Another goroutine is already fetching; serve the stale snapshot.
			regionRefreshSuppressedTotal.Inc()
			s.logger.Debug().Msg("Refresh already in flight, serving stale directory")
			return dir
		}
		defer s.inflight.Store(false)
	}

	return s.refresh(ctx, dir, now)
}

// refresh fetches the region list and swaps in a new snapshot. Recovery rules:
// a non-success status or an empty list leaves the mapping unchanged; a
// network/parse failure repopulates an empty mapping from the fallback region.
func (s *Store) refresh(ctx context.Context, dir *Directory, now time.Time) *Directory {
	list, err := s.fetcher.ListRegions(ctx)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			regionFetchesTotal.WithLabelValues("upstream_status").Inc()
			s.logger.Warn().
				Int("status", statusErr.StatusCode).
				Str("url", statusErr.URL).
				Int("directory_size", dir.Len()).
				Msg("Region fetch returned non-success status, keeping existing directory")
			return dir
		}

		regionFetchesTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).
			Int("directory_size", dir.Len()).
			Msg("Region fetch failed")

		if dir.Len() == 0 {
			if fb := s.fallback.Load(); fb != nil {
				next := newDirectory([]Region{*fb}, now)
				s.current.Store(next)
				regionFallbackAppliedTotal.Inc()
				regionDirectorySize.Set(float64(next.Len()))
				s.logger.Warn().
					Str("fallback_region", fb.Name).
					Int("country_count", next.Len()).
					Msg("Populated empty directory from fallback region")
				return next
			}
		}
		return dir
	}

	if len(list) == 0 {
		regionFetchesTotal.WithLabelValues("empty").Inc()
		s.logger.Warn().Msg("Backend returned empty region list, keeping existing directory")
		return dir
	}

	s.selectFallbackOnce(list)

	next := newDirectory(list, now)
	s.current.Store(next)
	regionFetchesTotal.WithLabelValues("success").Inc()
	regionDirectorySize.Set(float64(next.Len()))
	s.logger.Info().
		Int("region_count", len(list)).
		Int("country_count", next.Len()).
		Msg("Region directory refreshed")

	return next
}

// selectFallbackOnce picks the fallback region on the first successful fetch:
// the first region serving the default code, else the first region in the
// list. Once set it is never overwritten; under concurrent first fetches the
// CAS lets one candidate win, which is fine since both come from equally
// valid responses.
func (s *Store) selectFallbackOnce(list []Region) {
	if s.fallback.Load() != nil {
		return
	}

	candidate := list[0]
	for _, region := range list {
		if region.HasCountry(s.defaultCode) {
			candidate = region
			break
		}
	}
	clone := candidate.clone()

	if s.fallback.CompareAndSwap(nil, &clone) {
		s.logger.Info().
			Str("fallback_region", clone.Name).
			Int("country_count", len(clone.Countries)).
			Msg("Fallback region selected")
	}
}

// FallbackRegion returns the fallback region, if one has been established.
func (s *Store) FallbackRegion() (Region, bool) {
	fb := s.fallback.Load()
	if fb == nil {
		return Region{}, false
	}
	return fb.clone(), true
}
