package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/commercekit/edge-router/pkg/config"
)

// healthResponse is the /api/health payload.
type healthResponse struct {
	Status      string          `json:"status"`
	Environment string          `json:"environment"`
	EnvVars     map[string]bool `json:"envVars"`
	Timestamp   string          `json:"timestamp"`
}

// healthHandler reports service health: the deployment environment and the
// presence of every required environment variable. The service is unhealthy
// when any of them is absent.
func healthHandler(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := config.EnvReport()

		status := "healthy"
		httpStatus := http.StatusOK
		for _, present := range report {
			if !present {
				status = "unhealthy"
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		json.NewEncoder(w).Encode(healthResponse{
			Status:      status,
			Environment: environment,
			EnvVars:     report,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
