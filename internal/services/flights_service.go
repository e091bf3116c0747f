package services

import (
	"context"

	"infinite-experiment/airtrack/internal/models/dtos"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
)

// FlightsService runs the search and detail resolvers through the query cache
type FlightsService struct {
	Provider providers.FlightDataProvider
	Queries  *query.Client
}

func NewFlightsService(provider providers.FlightDataProvider, queries *query.Client) *FlightsService {
	return &FlightsService{
		Provider: provider,
		Queries:  queries,
	}
}

// SearchFlights returns the cached or freshly resolved results for query.
// A blank query returns query.ErrDisabled without calling the provider.
func (svc *FlightsService) SearchFlights(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
	key := query.SearchKey(q)
	return query.Fetch(ctx, svc.Queries, key, func(ctx context.Context) ([]dtos.FlightSummary, error) {
		return svc.Provider.SearchFlights(ctx, key.Param)
	})
}

// FlightDetails returns the cached or freshly resolved record for flightID.
func (svc *FlightsService) FlightDetails(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
	return query.Fetch(ctx, svc.Queries, query.DetailKey(flightID), func(ctx context.Context) (*dtos.FlightDetail, error) {
		return svc.Provider.GetFlightDetail(ctx, flightID)
	})
}

func (svc *FlightsService) MapView(ctx context.Context, flightID string) (*dtos.MapView, error) {
	detail, err := svc.FlightDetails(ctx, flightID)
	if err != nil {
		return nil, err
	}
	view := BuildMapView(detail)
	return &view, nil
}

// CachedSearch returns the stored results for q without resolving.
func (svc *FlightsService) CachedSearch(q string) (query.Cached[[]dtos.FlightSummary], bool) {
	return query.Peek[[]dtos.FlightSummary](svc.Queries, query.SearchKey(q))
}

// CachedDetail returns the stored record for flightID without resolving.
func (svc *FlightsService) CachedDetail(flightID string) (query.Cached[*dtos.FlightDetail], bool) {
	return query.Peek[*dtos.FlightDetail](svc.Queries, query.DetailKey(flightID))
}
