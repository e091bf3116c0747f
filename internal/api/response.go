package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/providers"
	"infinite-experiment/airtrack/internal/query"
	"infinite-experiment/airtrack/internal/services"
)

const maxRequestBody = 1 << 16

// respondServiceError maps resolver and session errors onto HTTP statuses.
// Nothing is written when the client has gone away.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	if errors.Is(err, context.Canceled) {
		logging.Debug("Client disconnected before the response was ready", "error", err.Error())
		return
	}

	code := services.ErrorCode(err)

	status := http.StatusInternalServerError
	switch {
	case providers.IsNetworkError(err), providers.IsSchemaError(err):
		status = http.StatusBadGateway
	case errors.Is(err, query.ErrDisabled):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnknownFlight):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNotSelectable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSessionClosed), errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusUnauthorized
	}

	if code == "" {
		code = constants.ErrCodeNetworkError
	}
	common.RespondErrorCode(w, initTime, code, status)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
