package api

import (
	"net/http"
	"strings"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/constants"
)

// SearchFlights godoc
// @Summary      Search flights
// @Description  Resolves a flight number or free-text query into result rows, in upstream order.
// @Tags         Flights
// @Produce      json
// @Param        query  query    string  true  "Flight number or free text"
// @Success      200    {object} dtos.FlightSearchSwaggerResponse
// @Failure      400,502 {object} dtos.APIResponse
// @Router       /api/v1/flights/search [get]
func (h *Handlers) SearchFlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		q := strings.TrimSpace(r.URL.Query().Get("query"))
		if q == "" {
			common.RespondErrorCode(w, initTime, constants.ErrCodeInvalidQuery, http.StatusBadRequest)
			return
		}

		results, err := h.deps.Services.Flights.SearchFlights(r.Context(), q)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Search results", results)
	}
}

// FlightDetail godoc
// @Summary      Flight detail
// @Description  Returns the full record for a schedule or live search result.
// @Tags         Flights
// @Produce      json
// @Param        flight  query    string  true  "Search result id"
// @Success      200     {object} dtos.FlightDetailSwaggerResponse
// @Failure      400,502 {object} dtos.APIResponse
// @Router       /api/v1/flights/detail [get]
func (h *Handlers) FlightDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flightID := strings.TrimSpace(r.URL.Query().Get("flight"))
		if flightID == "" {
			common.RespondError(w, initTime, nil, "flight parameter is required", http.StatusBadRequest)
			return
		}

		detail, err := h.deps.Services.Flights.FlightDetails(r.Context(), flightID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight detail", detail)
	}
}

// FlightMap godoc
// @Summary      Flight map
// @Description  Returns the map projection of a flight: current position, trail and route.
// @Tags         Flights
// @Produce      json
// @Param        flight  query    string  true  "Search result id"
// @Success      200     {object} dtos.MapViewSwaggerResponse
// @Failure      400,502 {object} dtos.APIResponse
// @Router       /api/v1/flights/map [get]
func (h *Handlers) FlightMap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flightID := strings.TrimSpace(r.URL.Query().Get("flight"))
		if flightID == "" {
			common.RespondError(w, initTime, nil, "flight parameter is required", http.StatusBadRequest)
			return
		}

		view, err := h.deps.Services.Flights.MapView(r.Context(), flightID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight map", view)
	}
}
