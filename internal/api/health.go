package api

import (
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Verifies the server is running and its cache backend answers.
// @Tags Misc
// @Success 200 {object} dtos.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(store common.CacheInterface, apiKeyConfigured bool, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]dtos.ServiceStatus)

		cacheStatus := "ok"
		cacheDetails := "Query cache reachable"
		if err := store.Ping(); err != nil {
			cacheStatus = "down"
			cacheDetails = err.Error()
		}
		services["query_cache"] = dtos.ServiceStatus{
			Status:  cacheStatus,
			Details: cacheDetails,
		}

		upstream := dtos.ServiceStatus{Status: "ok", Details: "API key configured"}
		if !apiKeyConfigured {
			upstream = dtos.ServiceStatus{Status: "degraded", Details: "RAPID_API_KEY is not set"}
		}
		services["flight_data"] = upstream

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status == "down" {
				overallStatus = "down"
				break
			}
		}

		resp := dtos.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
