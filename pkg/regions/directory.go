package regions

import (
	"strings"
	"time"
)

// Directory is an immutable snapshot of the country-code to region mapping.
// Keys are lowercase ISO 3166-1 alpha-2 codes. Snapshots are shared across
// request goroutines and must never be mutated after construction.
type Directory struct {
	byCode    map[string]Region
	codes     []string // insertion order, for deterministic fallback
	updatedAt time.Time
}

// emptyDirectory is the zero snapshot served before the first fetch.
var emptyDirectory = &Directory{byCode: map[string]Region{}}

// newDirectory builds a snapshot from a region list. Every country code of
// every region becomes a key; on duplicate codes across regions the last
// region wins, while the code keeps its first-insertion position.
func newDirectory(list []Region, at time.Time) *Directory {
	d := &Directory{
		byCode:    make(map[string]Region),
		codes:     make([]string, 0, len(list)),
		updatedAt: at,
	}
	for _, region := range list {
		r := region.clone()
		for _, country := range r.Countries {
			code := strings.ToLower(country.ISO2)
			if code == "" {
				continue
			}
			if _, seen := d.byCode[code]; !seen {
				d.codes = append(d.codes, code)
			}
			d.byCode[code] = r
		}
	}
	return d
}

// Lookup returns the region serving the given lowercase country code.
func (d *Directory) Lookup(code string) (Region, bool) {
	r, ok := d.byCode[code]
	return r, ok
}

// FirstCode returns the first-inserted country code, if any.
func (d *Directory) FirstCode() (string, bool) {
	if len(d.codes) == 0 {
		return "", false
	}
	return d.codes[0], true
}

// Codes returns the country codes in insertion order.
func (d *Directory) Codes() []string {
	out := make([]string, len(d.codes))
	copy(out, d.codes)
	return out
}

// Len returns the number of country codes in the directory.
func (d *Directory) Len() int {
	return len(d.byCode)
}

// UpdatedAt returns when the snapshot was populated.
// The zero time means the directory has never been populated.
func (d *Directory) UpdatedAt() time.Time {
	return d.updatedAt
}
