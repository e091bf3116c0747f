package dtos

// Typed envelopes for the Swagger docs only. Handlers write APIResponse.

type FlightSearchSwaggerResponse struct {
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	ResponseTime string          `json:"response_time"`
	Data         []FlightSummary `json:"data"`
}

type FlightDetailSwaggerResponse struct {
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	ResponseTime string       `json:"response_time"`
	Data         FlightDetail `json:"data"`
}

type MapViewSwaggerResponse struct {
	Status       string  `json:"status"`
	Message      string  `json:"message"`
	ResponseTime string  `json:"response_time"`
	Data         MapView `json:"data"`
}

type SessionCreatedSwaggerResponse struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message"`
	ResponseTime string                 `json:"response_time"`
	Data         SessionCreatedResponse `json:"data"`
}
