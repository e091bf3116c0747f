package services

import (
	"errors"

	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
)

var (
	ErrUnknownFlight   = errors.New("flight is not part of the current search results")
	ErrNotSelectable   = errors.New("search result is not trackable")
	ErrSessionClosed   = errors.New("tracking session is closed")
	ErrSessionNotFound = errors.New("tracking session not found")
)

// ErrorCode maps a resolver or selection error onto its API error code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case providers.IsNetworkError(err):
		return constants.ErrCodeNetworkError
	case providers.IsSchemaError(err):
		return constants.ErrCodeSchemaMismatch
	case errors.Is(err, query.ErrDisabled):
		return constants.ErrCodeInvalidQuery
	case errors.Is(err, ErrUnknownFlight):
		return constants.ErrCodeUnknownFlight
	case errors.Is(err, ErrNotSelectable):
		return constants.ErrCodeFlightNotSelectable
	case errors.Is(err, ErrSessionClosed), errors.Is(err, ErrSessionNotFound):
		return constants.ErrCodeSessionInvalid
	}
	return constants.ErrCodeNetworkError
}
