package middleware

import (
	"net/http"
	"strings"
	"time"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/constants"
	reqctx "infinite-experiment/airtrack/internal/context"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/services"
)

// SessionAuthMiddleware resolves the bearer token to a tracking session. Browsers
// cannot set headers on websocket upgrades, so the token may also come in ?token=.
func SessionAuthMiddleware(sessions *services.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			authHeader := r.Header.Get("Authorization")

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			case r.URL.Query().Get("token") != "":
				token = r.URL.Query().Get("token")
			}

			if token == "" {
				common.RespondErrorCode(w, time.Now(), constants.ErrCodeSessionInvalid, http.StatusUnauthorized)
				return
			}

			session, err := sessions.Authenticate(token)
			if err != nil {
				logging.WithRequest(reqctx.GetRequestID(r.Context()), "", r.URL.Path).Debugw("Session token rejected", "error", err.Error())
				common.RespondErrorCode(w, time.Now(), constants.ErrCodeSessionInvalid, http.StatusUnauthorized)
				return
			}

			logging.WithRequest(reqctx.GetRequestID(r.Context()), session.ID, r.URL.Path).Debug("Session authenticated")
			next.ServeHTTP(w, r.WithContext(reqctx.SetSession(r.Context(), session)))
		})
	}
}
