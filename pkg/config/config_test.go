package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvBackendURL, "https://backend.example.com")
	t.Setenv(EnvPublishableAPIKey, "pk_test_123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DefaultRegion != "us" {
		t.Errorf("DefaultRegion = %q, want %q", cfg.DefaultRegion, "us")
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.GeoCountryHeader != "CF-IPCountry" {
		t.Errorf("GeoCountryHeader = %q, want %q", cfg.GeoCountryHeader, "CF-IPCountry")
	}
	if cfg.RegionTTL != time.Hour {
		t.Errorf("RegionTTL = %v, want %v", cfg.RegionTTL, time.Hour)
	}
	if cfg.StrictRegionMatch {
		t.Error("StrictRegionMatch should default to false")
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		apiKey  string
	}{
		{"missing_backend_url", "", "pk_test_123"},
		{"missing_api_key", "https://backend.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBackendURL, tt.backend)
			t.Setenv(EnvPublishableAPIKey, tt.apiKey)

			if _, err := Load(); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvDefaultRegion, "DE")
	t.Setenv(EnvRegionTTLSeconds, "60")
	t.Setenv(EnvStrictRegionMatch, "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Default region is normalized to lowercase
	if cfg.DefaultRegion != "de" {
		t.Errorf("DefaultRegion = %q, want %q", cfg.DefaultRegion, "de")
	}
	if cfg.RegionTTL != 60*time.Second {
		t.Errorf("RegionTTL = %v, want %v", cfg.RegionTTL, 60*time.Second)
	}
	if !cfg.StrictRegionMatch {
		t.Error("StrictRegionMatch should be true")
	}
}

func TestLoad_InvalidTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvRegionTTLSeconds, "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid TTL")
	}
}

func TestEnvReport(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvDefaultRegion, "us")
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvRedisURL, "")

	report := EnvReport()

	if len(report) != len(RequiredEnvVars) {
		t.Fatalf("report has %d entries, want %d", len(report), len(RequiredEnvVars))
	}
	if !report[EnvBackendURL] {
		t.Errorf("%s should be reported present", EnvBackendURL)
	}
	if report[EnvRedisURL] {
		t.Errorf("%s should be reported absent", EnvRedisURL)
	}
}
