// Package regions maintains the country-code to region directory for the
// storefront edge router. The directory is fetched from the commerce backend,
// refreshed at most once per freshness window, and keeps a fallback region
// for degraded operation.
package regions

import (
	"context"
	"fmt"
	"strings"
)

// Country is a country served by a region.
type Country struct {
	// ISO2 is the ISO 3166-1 alpha-2 code (e.g., "us")
	ISO2 string `json:"iso_2"`

	// DisplayName is the human-readable country name, when the backend sends one
	DisplayName string `json:"display_name,omitempty"`
}

// Region is a read-only copy of a backend region record.
type Region struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code,omitempty"`
	Countries    []Country `json:"countries"`
}

// HasCountry reports whether the region serves the given lowercase country code.
func (r Region) HasCountry(code string) bool {
	for _, c := range r.Countries {
		if strings.ToLower(c.ISO2) == code {
			return true
		}
	}
	return false
}

// clone returns a deep copy so directory snapshots never alias fetcher data.
func (r Region) clone() Region {
	out := r
	out.Countries = make([]Country, len(r.Countries))
	copy(out.Countries, r.Countries)
	return out
}

// Fetcher retrieves the region list from the commerce backend.
type Fetcher interface {
	// ListRegions returns every region the backend knows about.
	// A non-success HTTP status is reported as *StatusError; any other
	// error indicates a network or parse failure.
	ListRegions(ctx context.Context) ([]Region, error)
}

// StatusError reports a non-success HTTP status from the backend region query.
// It lets the store distinguish "backend answered with an error status" from
// network and parse failures, which have a different recovery path.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d for %s", e.StatusCode, e.URL)
}
