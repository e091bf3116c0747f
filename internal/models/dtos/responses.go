package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Code         string `json:"code,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// ---- SESSIONS ----

type SessionCreatedResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionSearchRequest struct {
	Query string `json:"query"`
}

type SessionSelectRequest struct {
	FlightID string `json:"flight_id"`
}

// ---- MAP ----

// Coordinate is a latitude/longitude pair as consumed by map widgets.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapRegion is a center plus span, in degrees.
type MapRegion struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

type MapMarker struct {
	Coordinate  Coordinate `json:"coordinate"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// LiveData is the altitude/speed/heading readout taken from the latest trail sample.
type LiveData struct {
	Altitude float64 `json:"altitude_ft"`
	Speed    float64 `json:"speed_kts"`
	Heading  float64 `json:"heading_deg"`
}

// MapView is everything a map renders for one flight.
type MapView struct {
	FlightID    string       `json:"flight_id"`
	Region      MapRegion    `json:"region"`
	Aircraft    *MapMarker   `json:"aircraft,omitempty"`
	Path        []Coordinate `json:"path,omitempty"`
	Route       []Coordinate `json:"route,omitempty"`
	Origin      *MapMarker   `json:"origin,omitempty"`
	Destination *MapMarker   `json:"destination,omitempty"`
	Live        *LiveData    `json:"live,omitempty"`
}
