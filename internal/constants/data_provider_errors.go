package constants

// Flight data provider error codes

// Upstream errors
const (
	ErrCodeNetworkError   = "NETWORK_ERROR"
	ErrCodeSchemaMismatch = "SCHEMA_MISMATCH"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

// Input and selection errors
const (
	ErrCodeInvalidQuery        = "INVALID_QUERY"
	ErrCodeUnknownFlight       = "UNKNOWN_FLIGHT"
	ErrCodeFlightNotSelectable = "FLIGHT_NOT_SELECTABLE"
)

// Session errors
const (
	ErrCodeSessionInvalid = "SESSION_INVALID"
)

// Error Messages
// Human-readable messages corresponding to error codes

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:   "Network response was not ok",
	ErrCodeSchemaMismatch: "The flight data provider returned data in an unexpected shape",
	ErrCodeRateLimited:    "Rate limit exceeded. Please try again later",

	ErrCodeInvalidQuery:        "Search query cannot be empty",
	ErrCodeUnknownFlight:       "The flight is not part of the current search results",
	ErrCodeFlightNotSelectable: "This result is not trackable",

	ErrCodeSessionInvalid: "The session token is invalid or has expired",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
