package providers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/config"
	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
	"infinite-experiment/airtrack/internal/models/dtos"
)

// maxErrorBody caps how much of a failed response is kept for logs
const maxErrorBody = 4 << 10

// FlightRadarProvider calls the RapidAPI flight-radar search and detail endpoints
type FlightRadarProvider struct {
	BaseURL string
	APIHost string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
	Metrics *metrics.MetricsRegistry
}

// NewFlightRadarProvider builds a provider from upstream configuration
func NewFlightRadarProvider(cfg config.UpstreamConfig, reg *metrics.MetricsRegistry) *FlightRadarProvider {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &FlightRadarProvider{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		APIHost: cfg.Host,
		APIKey:  cfg.APIKey,
		Client: &http.Client{
			Timeout: cfg.Timeout,
		},
		Limiter: limiter,
		Metrics: reg,
	}
}

// GetProviderType returns the provider type identifier
func (p *FlightRadarProvider) GetProviderType() string {
	return "flight_radar_rapidapi"
}

// SearchFlights resolves a free-text query into summaries, in upstream order.
// Callers must not pass a blank query.
func (p *FlightRadarProvider) SearchFlights(ctx context.Context, query string) ([]dtos.FlightSummary, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidQuery,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidQuery),
		}
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("limit", strconv.Itoa(constants.SearchResultLimit))

	body, err := p.doGET(ctx, string(constants.QueryTagSearch), "/flights/search", params)
	if err != nil {
		return nil, err
	}

	results, err := MapSearchResults(body)
	if err != nil {
		logging.Error("Search payload rejected", "query", q, "error", err.Error())
		return nil, err
	}
	return results, nil
}

// GetFlightDetail resolves a selectable summary id into the full flight record
func (p *FlightRadarProvider) GetFlightDetail(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
	if strings.TrimSpace(flightID) == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeUnknownFlight,
			Message: "Flight ID cannot be empty",
		}
	}

	params := url.Values{}
	params.Set("flight", flightID)

	body, err := p.doGET(ctx, string(constants.QueryTagDetail), "/flights/detail", params)
	if err != nil {
		return nil, err
	}

	detail, err := DecodeFlightDetail(body)
	if err != nil {
		logging.Error("Detail payload rejected", "flight_id", flightID, "error", err.Error())
		return nil, err
	}
	return detail, nil
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// doGET performs an authenticated GET and returns the body of a 2xx response.
// Every other outcome is a NetworkError.
func (p *FlightRadarProvider) doGET(ctx context.Context, operation, endpoint string, params url.Values) ([]byte, error) {
	start := time.Now()
	outcome := "network_error"
	defer func() {
		p.Metrics.ObserveUpstream(operation, outcome, time.Since(start))
	}()

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			outcome = "throttled"
			return nil, newNetworkError(0, "", err)
		}
	}

	// Build request
	reqURL := p.BaseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newNetworkError(0, "", err)
	}

	// Set headers
	req.Header.Set(constants.RapidAPIHostHeader, p.APIHost)
	req.Header.Set(constants.RapidAPIKeyHeader, p.APIKey)
	req.Header.Set("Accept", "application/json")
	common.LogHTTPRequest(req, constants.RapidAPIKeyHeader)

	// Execute request
	resp, err := p.Client.Do(req)
	if err != nil {
		logging.Warn("Upstream request failed", "operation", operation, "error", err.Error())
		return nil, newNetworkError(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logging.Warn("Upstream returned non-success status",
			"operation", operation,
			"status_code", resp.StatusCode,
		)
		return nil, newNetworkError(resp.StatusCode, string(bodyBytes), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(resp.StatusCode, "", err)
	}

	outcome = "ok"
	return bodyBytes, nil
}
