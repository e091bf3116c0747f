package providers

import (
	"errors"
	"fmt"
	"strings"

	"infinite-experiment/airtrack/internal/constants"
)

// ProviderError is returned for transport and status failures talking to the flight data API
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newNetworkError(status int, details string, err error) *ProviderError {
	return &ProviderError{
		Code:       constants.ErrCodeNetworkError,
		Message:    constants.GetErrorMessage(constants.ErrCodeNetworkError),
		Details:    details,
		StatusCode: status,
		Err:        err,
	}
}

// IsNetworkError reports whether err is (or wraps) a NETWORK_ERROR ProviderError
func IsNetworkError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == constants.ErrCodeNetworkError
}

// SchemaError means a payload could not be mapped into the domain shape
type SchemaError struct {
	Resource string
	Fields   []string
	Err      error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s payload is malformed: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("%s payload has missing or invalid fields: %s", e.Resource, strings.Join(e.Fields, ", "))
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is (or wraps) a SchemaError
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
