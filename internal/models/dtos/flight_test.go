package dtos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightType_Selectable(t *testing.T) {
	cases := map[FlightType]bool{
		FlightTypeSchedule: true,
		FlightTypeLive:     true,
		FlightTypeOperator: false,
		FlightTypeAirport:  false,
		FlightTypeAircraft: false,
		FlightType("boat"): false,
	}
	for typ, want := range cases {
		assert.Equal(t, want, FlightSummary{ID: "x", Type: typ}.Selectable(), string(typ))
	}
}

func TestFlightType_Valid(t *testing.T) {
	assert.True(t, FlightTypeAirport.Valid())
	assert.False(t, FlightType("").Valid())
	assert.False(t, FlightType("LIVE").Valid())
}

func TestFlightDetail_CurrentPosition(t *testing.T) {
	var nilDetail *FlightDetail
	_, ok := nilDetail.CurrentPosition()
	assert.False(t, ok)

	d := &FlightDetail{Trail: []TrailPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}}
	p, ok := d.CurrentPosition()
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.Lat)
}
