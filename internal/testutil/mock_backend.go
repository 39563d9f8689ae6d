// Package testutil provides testing utilities for the edge router.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockRegion describes a region served by the mock backend.
type MockRegion struct {
	ID        string
	Name      string
	Countries []string
}

// MockBackend is a configurable mock commerce backend for testing.
// By default it serves an empty region listing on /store/regions.
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	regions []MockRegion
	status  int
	delay   time.Duration

	// Tracking
	requestCount      int
	lastRequestHeader http.Header
}

// NewMockBackend creates a new mock commerce backend.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		status:   http.StatusOK,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		if r.URL.Path == "/store/regions" {
			mock.regionsHandler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears tracking counters and configured behavior.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequestHeader = nil
	m.regions = nil
	m.status = http.StatusOK
	m.delay = 0
}

// SetRegions configures the region listing.
func (m *MockBackend) SetRegions(regions []MockRegion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = regions
}

// SetStatus makes /store/regions answer with the given status code.
func (m *MockBackend) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// SetDelay delays every /store/regions response.
func (m *MockBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// RequestCount returns the number of requests made to the server.
func (m *MockBackend) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockBackend) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// regionsHandler serves the paginated region listing the way the commerce
// backend does: {"regions": [...], "count": N, "offset": M, "limit": L}.
func (m *MockBackend) regionsHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	regionList := m.regions
	status := m.status
	delay := m.delay
	m.mu.RUnlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
		w.Write([]byte(`{"message": "upstream error"}`))
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	end := offset + limit
	if offset > len(regionList) {
		offset = len(regionList)
	}
	if end > len(regionList) {
		end = len(regionList)
	}

	page := make([]map[string]any, 0, end-offset)
	for _, region := range regionList[offset:end] {
		countries := make([]map[string]string, 0, len(region.Countries))
		for _, code := range region.Countries {
			countries = append(countries, map[string]string{"iso_2": code})
		}
		page = append(page, map[string]any{
			"id":        region.ID,
			"name":      region.Name,
			"countries": countries,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"regions": page,
		"count":   len(regionList),
		"offset":  offset,
		"limit":   limit,
	})
}
