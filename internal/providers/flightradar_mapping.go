package providers

import (
	"encoding/json"
	"fmt"

	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/models/dtos"
)

// ---- SEARCH ----

type rawSearchResponse struct {
	Results *[]rawSearchResult `json:"results"`
	Stats   json.RawMessage    `json:"stats"`
}

type rawSearchResult struct {
	ID     string           `json:"id"`
	Label  string           `json:"label"`
	Type   string           `json:"type"`
	Detail *rawSearchDetail `json:"detail"`
}

type rawSearchDetail struct {
	OperatorID *int    `json:"operator_id"`
	IATA       *string `json:"iata"`
	Logo       *string `json:"logo"`
	Callsign   *string `json:"callsign"`
	Flight     *string `json:"flight"`
	Operator   *string `json:"operator"`
}

// MapSearchResults maps a search response body into summaries.
//
// Optional detail fields that are absent stay nil. A missing label falls back to
// the flight number, then the callsign, then the id. Missing results, ids or an
// unknown type tag are schema errors. Duplicate ids keep the first occurrence.
func MapSearchResults(body []byte) ([]dtos.FlightSummary, error) {
	var raw rawSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &SchemaError{Resource: "search", Err: err}
	}
	if raw.Results == nil {
		return nil, &SchemaError{Resource: "search", Fields: []string{"results"}}
	}

	var invalid []string
	seen := make(map[string]struct{}, len(*raw.Results))
	summaries := make([]dtos.FlightSummary, 0, len(*raw.Results))

	for i, r := range *raw.Results {
		if r.ID == "" {
			invalid = append(invalid, fmt.Sprintf("results[%d].id", i))
			continue
		}
		typ := dtos.FlightType(r.Type)
		if !typ.Valid() {
			invalid = append(invalid, fmt.Sprintf("results[%d].type", i))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			logging.Warn("Dropping duplicate search result", "id", r.ID, "index", i)
			continue
		}
		seen[r.ID] = struct{}{}

		var detail dtos.SummaryDetail
		if r.Detail != nil {
			detail = dtos.SummaryDetail{
				Callsign: r.Detail.Callsign,
				Flight:   r.Detail.Flight,
				Operator: r.Detail.Operator,
				Logo:     r.Detail.Logo,
			}
		}

		summaries = append(summaries, dtos.FlightSummary{
			ID:     r.ID,
			Label:  summaryLabel(r.Label, detail, r.ID),
			Type:   typ,
			Detail: detail,
		})
	}

	if len(invalid) > 0 {
		return nil, &SchemaError{Resource: "search", Fields: invalid}
	}
	return summaries, nil
}

func summaryLabel(label string, detail dtos.SummaryDetail, id string) string {
	switch {
	case label != "":
		return label
	case detail.Flight != nil && *detail.Flight != "":
		return *detail.Flight
	case detail.Callsign != nil && *detail.Callsign != "":
		return *detail.Callsign
	default:
		return id
	}
}

// ---- DETAIL ----

type rawFlightDetail struct {
	Identification *rawIdentification `json:"identification"`
	Status         *dtos.FlightStatus `json:"status"`
	Aircraft       *dtos.Aircraft     `json:"aircraft"`
	Airline        *dtos.Airline      `json:"airline"`
	Airport        *rawRouteAirports  `json:"airport"`
	Time           *dtos.FlightTimes  `json:"time"`
	Trail          []rawTrailPoint    `json:"trail"`
}

type rawIdentification struct {
	ID       *string           `json:"id"`
	Number   dtos.FlightNumber `json:"number"`
	Callsign string            `json:"callsign"`
}

type rawRouteAirports struct {
	Origin      *rawAirport `json:"origin"`
	Destination *rawAirport `json:"destination"`
}

type rawAirport struct {
	Name     string              `json:"name"`
	Code     dtos.AirlineCode    `json:"code"`
	Position *rawAirportPosition `json:"position"`
}

type rawAirportPosition struct {
	Latitude  *float64     `json:"latitude"`
	Longitude *float64     `json:"longitude"`
	Altitude  float64      `json:"altitude"`
	Country   dtos.Country `json:"country"`
	Region    dtos.Region  `json:"region"`
}

type rawTrailPoint struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
	Alt float64  `json:"alt"`
	Spd float64  `json:"spd"`
	Ts  int64    `json:"ts"`
	Hd  float64  `json:"hd"`
}

// DecodeFlightDetail validates a detail response body into the exact FlightDetail shape.
// Every missing required path is reported in a single SchemaError.
func DecodeFlightDetail(body []byte) (*dtos.FlightDetail, error) {
	var raw rawFlightDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &SchemaError{Resource: "detail", Err: err}
	}

	var missing []string
	need := func(ok bool, path string) bool {
		if !ok {
			missing = append(missing, path)
		}
		return ok
	}

	detail := &dtos.FlightDetail{}

	if need(raw.Identification != nil, "identification") {
		if need(raw.Identification.ID != nil && *raw.Identification.ID != "", "identification.id") {
			detail.Identification.ID = *raw.Identification.ID
		}
		detail.Identification.Number = raw.Identification.Number
		detail.Identification.Callsign = raw.Identification.Callsign
	}
	if need(raw.Status != nil, "status") {
		detail.Status = *raw.Status
	}
	if need(raw.Aircraft != nil, "aircraft") {
		detail.Aircraft = *raw.Aircraft
	}
	if need(raw.Airline != nil, "airline") {
		detail.Airline = *raw.Airline
	}
	if need(raw.Airport != nil, "airport") {
		detail.Airport.Origin = decodeAirport(raw.Airport.Origin, "airport.origin", need)
		detail.Airport.Destination = decodeAirport(raw.Airport.Destination, "airport.destination", need)
	}
	if need(raw.Time != nil, "time") {
		detail.Time = *raw.Time
	}

	if len(raw.Trail) > 0 {
		detail.Trail = make([]dtos.TrailPoint, 0, len(raw.Trail))
		for i, p := range raw.Trail {
			okLat := need(p.Lat != nil, fmt.Sprintf("trail[%d].lat", i))
			okLng := need(p.Lng != nil, fmt.Sprintf("trail[%d].lng", i))
			if !okLat || !okLng {
				continue
			}
			detail.Trail = append(detail.Trail, dtos.TrailPoint{
				Lat: *p.Lat,
				Lng: *p.Lng,
				Alt: p.Alt,
				Spd: p.Spd,
				Ts:  p.Ts,
				Hd:  p.Hd,
			})
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Resource: "detail", Fields: missing}
	}
	return detail, nil
}

func decodeAirport(raw *rawAirport, path string, need func(bool, string) bool) dtos.Airport {
	if !need(raw != nil, path) {
		return dtos.Airport{}
	}
	airport := dtos.Airport{Name: raw.Name, Code: raw.Code}
	if !need(raw.Position != nil, path+".position") {
		return airport
	}

	pos := raw.Position
	airport.Position = dtos.AirportPosition{
		Altitude: pos.Altitude,
		Country:  pos.Country,
		Region:   pos.Region,
	}
	if need(pos.Latitude != nil, path+".position.latitude") {
		airport.Position.Latitude = *pos.Latitude
	}
	if need(pos.Longitude != nil, path+".position.longitude") {
		airport.Position.Longitude = *pos.Longitude
	}
	return airport
}
