package dtos

// FlightType tags what kind of entity a search hit represents.
type FlightType string

const (
	FlightTypeOperator FlightType = "operator"
	FlightTypeSchedule FlightType = "schedule"
	FlightTypeLive     FlightType = "live"
	FlightTypeAirport  FlightType = "airport"
	FlightTypeAircraft FlightType = "aircraft"
)

// Valid reports whether t is one of the known tags.
func (t FlightType) Valid() bool {
	switch t {
	case FlightTypeOperator, FlightTypeSchedule, FlightTypeLive, FlightTypeAirport, FlightTypeAircraft:
		return true
	}
	return false
}

// Selectable reports whether a hit of this type can be passed to the detail resolver.
func (t FlightType) Selectable() bool {
	return t == FlightTypeSchedule || t == FlightTypeLive
}

// ---- SEARCH ----

// FlightSummary is a single search result row
type FlightSummary struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Type   FlightType    `json:"type"`
	Detail SummaryDetail `json:"detail"`
}

// Selectable reports whether the row may be tracked.
func (s FlightSummary) Selectable() bool {
	return s.Type.Selectable()
}

// SummaryDetail is supplementary display text; every field is optional.
type SummaryDetail struct {
	Callsign *string `json:"callsign,omitempty"`
	Flight   *string `json:"flight,omitempty"`
	Operator *string `json:"operator,omitempty"`
	Logo     *string `json:"logo,omitempty"`
}

// ---- DETAIL ----

// FlightDetail is the full record for one tracked flight
type FlightDetail struct {
	Identification Identification `json:"identification"`
	Status         FlightStatus   `json:"status"`
	Aircraft       Aircraft       `json:"aircraft"`
	Airline        Airline        `json:"airline"`
	Airport        RouteAirports  `json:"airport"`
	Time           FlightTimes    `json:"time"`
	Trail          []TrailPoint   `json:"trail,omitempty"` // newest first
}

// CurrentPosition returns trail[0], the authoritative live position.
func (d *FlightDetail) CurrentPosition() (TrailPoint, bool) {
	if d == nil || len(d.Trail) == 0 {
		return TrailPoint{}, false
	}
	return d.Trail[0], true
}

type Identification struct {
	ID       string       `json:"id"`
	Number   FlightNumber `json:"number"`
	Callsign string       `json:"callsign"`
}

type FlightNumber struct {
	Default     string  `json:"default"`
	Alternative *string `json:"alternative"`
}

type FlightStatus struct {
	Live    bool          `json:"live"`
	Text    string        `json:"text"`
	Icon    *string       `json:"icon"`
	Generic GenericStatus `json:"generic"`
}

type GenericStatus struct {
	Status StatusInfo `json:"status"`
}

type StatusInfo struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

type Aircraft struct {
	Model        AircraftModel   `json:"model"`
	Registration string          `json:"registration"`
	Images       *AircraftImages `json:"images,omitempty"`
}

type AircraftModel struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type AircraftImages struct {
	Thumbnails []AircraftImage `json:"thumbnails"`
	Medium     []AircraftImage `json:"medium"`
	Large      []AircraftImage `json:"large"`
}

type AircraftImage struct {
	Src       string `json:"src"`
	Link      string `json:"link"`
	Copyright string `json:"copyright"`
	Source    string `json:"source"`
}

type Airline struct {
	Name string      `json:"name"`
	Code AirlineCode `json:"code"`
}

type AirlineCode struct {
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

type RouteAirports struct {
	Origin      Airport `json:"origin"`
	Destination Airport `json:"destination"`
}

type Airport struct {
	Name     string          `json:"name"`
	Code     AirlineCode     `json:"code"`
	Position AirportPosition `json:"position"`
}

type AirportPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Country   Country `json:"country"`
	Region    Region  `json:"region"`
}

type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type Region struct {
	City string `json:"city"`
}

// FlightTimes holds Unix-epoch seconds; nil means unknown.
type FlightTimes struct {
	Scheduled TimePair `json:"scheduled"`
	Real      TimePair `json:"real"`
	Estimated TimePair `json:"estimated"`
}

type TimePair struct {
	Departure *int64 `json:"departure"`
	Arrival   *int64 `json:"arrival"`
}

// TrailPoint is one position sample
type TrailPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Alt float64 `json:"alt"`
	Spd float64 `json:"spd"`
	Ts  int64   `json:"ts"`
	Hd  float64 `json:"hd"`
}
