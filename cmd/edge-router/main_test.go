package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStorefrontHandler_Placeholder(t *testing.T) {
	handler, err := storefrontHandler("")
	if err != nil {
		t.Fatalf("storefrontHandler failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/us/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStorefrontHandler_Proxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("storefront:" + r.URL.Path))
	}))
	defer upstream.Close()

	handler, err := storefrontHandler(upstream.URL)
	if err != nil {
		t.Fatalf("storefrontHandler failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/de/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	body, _ := io.ReadAll(rec.Result().Body)
	if string(body) != "storefront:/de/cart" {
		t.Errorf("body = %q, want %q", string(body), "storefront:/de/cart")
	}
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{"host port", "localhost:6379", false},
		{"redis scheme", "redis://localhost:6379/1", false},
		{"invalid scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newRedisClient(tt.url)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c == nil {
				t.Fatal("Client is nil")
			}
			c.Close()
		})
	}
}
