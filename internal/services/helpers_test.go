package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/models/dtos"
	"infinite-experiment/airtrack/internal/query"
)

// Mock FlightDataProvider
type mockFlightProvider struct {
	searchFunc func(ctx context.Context, q string) ([]dtos.FlightSummary, error)
	detailFunc func(ctx context.Context, flightID string) (*dtos.FlightDetail, error)

	searchCalls atomic.Int32
	detailCalls atomic.Int32
}

func (m *mockFlightProvider) SearchFlights(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
	m.searchCalls.Add(1)
	return m.searchFunc(ctx, q)
}

func (m *mockFlightProvider) GetFlightDetail(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
	m.detailCalls.Add(1)
	return m.detailFunc(ctx, flightID)
}

func (m *mockFlightProvider) GetProviderType() string {
	return "mock"
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestQueries(clock *fakeClock) *query.Client {
	return query.NewClient(common.NewCacheService(time.Hour, time.Hour), query.Options{
		StaleTime: 30 * time.Second,
		GCTime:    5 * time.Minute,
		Now:       clock.Now,
	})
}

func newTestFlights(provider *mockFlightProvider, clock *fakeClock) *FlightsService {
	return NewFlightsService(provider, newTestQueries(clock))
}

func strPtr(s string) *string {
	return &s
}

func sampleResults() []dtos.FlightSummary {
	return []dtos.FlightSummary{
		{ID: "A1", Label: "AF123", Type: dtos.FlightTypeSchedule, Detail: dtos.SummaryDetail{Flight: strPtr("AF123")}},
		{ID: "AFR", Label: "Air France", Type: dtos.FlightTypeOperator, Detail: dtos.SummaryDetail{Operator: strPtr("AFR")}},
		{ID: "L9", Label: "AF123 live", Type: dtos.FlightTypeLive, Detail: dtos.SummaryDetail{Callsign: strPtr("AFR123")}},
	}
}

func sampleDetail(id string, trail ...dtos.TrailPoint) *dtos.FlightDetail {
	return &dtos.FlightDetail{
		Identification: dtos.Identification{ID: id, Number: dtos.FlightNumber{Default: "AF123"}, Callsign: "AFR123"},
		Status:         dtos.FlightStatus{Live: len(trail) > 0, Text: "Estimated"},
		Airline:        dtos.Airline{Name: "Air France", Code: dtos.AirlineCode{IATA: "AF", ICAO: "AFR"}},
		Airport: dtos.RouteAirports{
			Origin: dtos.Airport{
				Name:     "Paris Charles de Gaulle Airport",
				Code:     dtos.AirlineCode{IATA: "CDG", ICAO: "LFPG"},
				Position: dtos.AirportPosition{Latitude: 49.0097, Longitude: 2.5479, Region: dtos.Region{City: "Paris"}},
			},
			Destination: dtos.Airport{
				Name:     "London Heathrow Airport",
				Code:     dtos.AirlineCode{IATA: "LHR", ICAO: "EGLL"},
				Position: dtos.AirportPosition{Latitude: 51.47, Longitude: -0.4543, Region: dtos.Region{City: "London"}},
			},
		},
		Trail: trail,
	}
}

// stubProvider answers every search with sampleResults and every detail with sampleDetail.
func stubProvider() *mockFlightProvider {
	return &mockFlightProvider{
		searchFunc: func(ctx context.Context, q string) ([]dtos.FlightSummary, error) {
			return sampleResults(), nil
		},
		detailFunc: func(ctx context.Context, flightID string) (*dtos.FlightDetail, error) {
			return sampleDetail(flightID, dtos.TrailPoint{Lat: 1, Lng: 1, Alt: 35000, Spd: 450, Hd: 315}), nil
		},
	}
}
