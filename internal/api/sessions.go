package api

import (
	"net/http"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/constants"
	reqctx "infinite-experiment/airtrack/internal/context"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/models/dtos"
	"infinite-experiment/airtrack/internal/services"
)

// CreateSession godoc
// @Summary      Open a tracking session
// @Description  Returns a bearer token for the session endpoints.
// @Tags         Sessions
// @Produce      json
// @Success      201  {object} dtos.SessionCreatedSwaggerResponse
// @Router       /api/v1/sessions [post]
func (h *Handlers) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		_, created, err := h.deps.Services.Sessions.Create()
		if err != nil {
			logging.Error("Failed to create tracking session", "error", err.Error())
			common.RespondError(w, initTime, nil, "Failed to create session", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Session created", created, http.StatusCreated)
	}
}

// SessionState godoc
// @Summary      Session state
// @Tags         Sessions
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer token"
// @Success      200  {object} dtos.APIResponse
// @Router       /api/v1/session/state [get]
func (h *Handlers) SessionState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		session := requireSession(w, r)
		if session == nil {
			return
		}
		common.RespondSuccess(w, initTime, "Session state", session.Snapshot())
	}
}

// SessionSearch godoc
// @Summary      Replace the session's search
// @Description  Starts resolving the query and clears the selected flight.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                     true  "Bearer token"
// @Param        body           body    dtos.SessionSearchRequest  true  "Query"
// @Success      202  {object} dtos.APIResponse
// @Failure      400  {object} dtos.APIResponse
// @Router       /api/v1/session/search [post]
func (h *Handlers) SessionSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		session := requireSession(w, r)
		if session == nil {
			return
		}

		var req dtos.SessionSearchRequest
		if err := decodeJSON(r, &req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := session.Search(req.Query); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Search started", session.Snapshot(), http.StatusAccepted)
	}
}

// SessionSelect godoc
// @Summary      Select a flight to track
// @Description  Only schedule and live results of the current search can be selected.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                     true  "Bearer token"
// @Param        body           body    dtos.SessionSelectRequest  true  "Flight id"
// @Success      202  {object} dtos.APIResponse
// @Failure      404,422 {object} dtos.APIResponse
// @Router       /api/v1/session/select [post]
func (h *Handlers) SessionSelect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		session := requireSession(w, r)
		if session == nil {
			return
		}

		var req dtos.SessionSelectRequest
		if err := decodeJSON(r, &req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := session.Select(req.FlightID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight selected", session.Snapshot(), http.StatusAccepted)
	}
}

// SessionClearSelection godoc
// @Summary      Stop tracking the selected flight
// @Tags         Sessions
// @Produce      json
// @Param        Authorization  header  string  true  "Bearer token"
// @Success      200  {object} dtos.APIResponse
// @Router       /api/v1/session/select [delete]
func (h *Handlers) SessionClearSelection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		session := requireSession(w, r)
		if session == nil {
			return
		}
		session.ClearSelection()
		common.RespondSuccess(w, initTime, "Selection cleared", session.Snapshot())
	}
}

// EndSession godoc
// @Summary      Close the session
// @Tags         Sessions
// @Param        Authorization  header  string  true  "Bearer token"
// @Success      204
// @Router       /api/v1/session [delete]
func (h *Handlers) EndSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := requireSession(w, r)
		if session == nil {
			return
		}
		h.deps.Services.Sessions.Delete(session.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func requireSession(w http.ResponseWriter, r *http.Request) *services.TrackingSession {
	session := reqctx.GetSession(r.Context())
	if session == nil {
		common.RespondErrorCode(w, time.Now(), constants.ErrCodeSessionInvalid, http.StatusUnauthorized)
	}
	return session
}
