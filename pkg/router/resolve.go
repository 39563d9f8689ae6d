package router

import (
	"net/http"
	"strings"

	"github.com/commercekit/edge-router/pkg/regions"
)

// firstPathSegment returns the first segment of a URL path, without slashes.
// "/de/products" -> "de"; "/" and "" -> "".
func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// Resolve maps a request to a country code against the given directory.
// Resolution order, first match wins:
//
//  1. first path segment, lowercased, when present in the directory
//  2. the edge-platform geolocation header, lowercased, when present
//  3. the configured default code, when present in the directory
//  4. the first-inserted directory code
//  5. the configured default code, unconditionally
//
// Resolve is total: it always returns a code and never fails.
func (rt *Router) Resolve(r *http.Request, dir *regions.Directory) string {
	if seg := strings.ToLower(firstPathSegment(r.URL.Path)); seg != "" {
		if _, ok := dir.Lookup(seg); ok {
			return seg
		}
	}

	if geo := strings.ToLower(strings.TrimSpace(r.Header.Get(rt.geoHeader))); geo != "" {
		if _, ok := dir.Lookup(geo); ok {
			return geo
		}
	}

	if _, ok := dir.Lookup(rt.defaultCode); ok {
		return rt.defaultCode
	}

	if code, ok := dir.FirstCode(); ok {
		return code
	}

	return rt.defaultCode
}
