package services

import (
	"fmt"

	"infinite-experiment/airtrack/internal/models/dtos"
)

const trackedRegionDelta = 2.0

// DefaultRegion frames western Europe when no live position is known.
var DefaultRegion = dtos.MapRegion{
	Latitude:       48.8566,
	Longitude:      2.3522,
	LatitudeDelta:  15,
	LongitudeDelta: 15,
}

// BuildMapView projects a flight record onto what a map draws: the aircraft at
// trail[0], the trail as a path in its given order, and the origin/destination route.
func BuildMapView(detail *dtos.FlightDetail) dtos.MapView {
	view := dtos.MapView{Region: DefaultRegion}
	if detail == nil {
		return view
	}
	view.FlightID = detail.Identification.ID

	origin := detail.Airport.Origin
	destination := detail.Airport.Destination
	view.Origin = airportMarker(origin)
	view.Destination = airportMarker(destination)
	view.Route = []dtos.Coordinate{view.Origin.Coordinate, view.Destination.Coordinate}

	current, ok := detail.CurrentPosition()
	if !ok {
		return view
	}

	view.Region = dtos.MapRegion{
		Latitude:       current.Lat,
		Longitude:      current.Lng,
		LatitudeDelta:  trackedRegionDelta,
		LongitudeDelta: trackedRegionDelta,
	}
	view.Aircraft = &dtos.MapMarker{
		Coordinate:  dtos.Coordinate{Latitude: current.Lat, Longitude: current.Lng},
		Title:       detail.Identification.Number.Default,
		Description: fmt.Sprintf("Alt: %gft, Speed: %gkts", current.Alt, current.Spd),
	}
	view.Live = &dtos.LiveData{
		Altitude: current.Alt,
		Speed:    current.Spd,
		Heading:  current.Hd,
	}

	view.Path = make([]dtos.Coordinate, len(detail.Trail))
	for i, p := range detail.Trail {
		view.Path[i] = dtos.Coordinate{Latitude: p.Lat, Longitude: p.Lng}
	}
	return view
}

func airportMarker(a dtos.Airport) *dtos.MapMarker {
	return &dtos.MapMarker{
		Coordinate:  dtos.Coordinate{Latitude: a.Position.Latitude, Longitude: a.Position.Longitude},
		Title:       a.Name,
		Description: fmt.Sprintf("%s - %s", a.Code.IATA, a.Position.Region.City),
	}
}
