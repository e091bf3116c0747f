package providers

import (
	"context"

	"infinite-experiment/airtrack/internal/models/dtos"
)

// FlightDataProvider is an external source of flight search results and flight detail
type FlightDataProvider interface {
	// SearchFlights resolves a free-text query into result rows, in upstream order
	SearchFlights(ctx context.Context, query string) ([]dtos.FlightSummary, error)

	// GetFlightDetail resolves one selectable result id into its full record
	GetFlightDetail(ctx context.Context, flightID string) (*dtos.FlightDetail, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

var _ FlightDataProvider = (*FlightRadarProvider)(nil)
