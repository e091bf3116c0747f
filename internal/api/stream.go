package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/services"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamCommand is sent by the client to drive its session over the socket.
type streamCommand struct {
	Type     string `json:"type"` // search, select, clear
	Query    string `json:"query,omitempty"`
	FlightID string `json:"flight_id,omitempty"`
}

type streamMessage struct {
	Type    string                 `json:"type"` // state, error
	State   *services.SessionState `json:"state,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// SessionStream godoc
// @Summary      Stream session state
// @Description  Upgrades to a websocket that pushes every session state change. The token may be passed as ?token=.
// @Tags         Sessions
// @Router       /api/v1/session/stream [get]
func (h *Handlers) SessionStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := requireSession(w, r)
		if session == nil {
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn("WebSocket upgrade failed", "session_id", session.ID, "error", err.Error())
			return
		}
		defer conn.Close()

		logging.Info("Stream client connected", "session_id", session.ID, "remote", conn.RemoteAddr().String())

		updates, unsubscribe := session.Subscribe()
		defer unsubscribe()

		replies := make(chan streamMessage, 4)
		done := make(chan struct{})
		stop := make(chan struct{})
		defer close(stop)
		go readStream(conn, session, replies, done, stop)

		ping := time.NewTicker(streamPingPeriod)
		defer ping.Stop()

		for {
			select {
			case <-done:
				logging.Info("Stream client disconnected", "session_id", session.ID)
				return

			case state, ok := <-updates:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
						time.Now().Add(streamWriteWait))
					return
				}
				if err := writeStream(conn, streamMessage{Type: "state", State: &state}); err != nil {
					return
				}

			case msg := <-replies:
				if err := writeStream(conn, msg); err != nil {
					return
				}

			case <-ping.C:
				// An open stream keeps the session from idling out
				if _, err := h.deps.Services.Sessions.Get(session.ID); err != nil {
					return
				}
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					return
				}
			}
		}
	}
}

func writeStream(conn *websocket.Conn, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}

// readStream applies client commands until the connection fails, then closes done.
// It gives up on pending replies once the writer has stopped.
func readStream(conn *websocket.Conn, session *services.TrackingSession, replies chan<- streamMessage, done chan<- struct{}, stop <-chan struct{}) {
	defer close(done)

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		var cmd streamCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("Stream read failed", "session_id", session.ID, "error", err.Error())
			}
			return
		}

		var reply *streamMessage
		switch cmd.Type {
		case "search":
			reply = commandError(session.Search(cmd.Query))
		case "select":
			reply = commandError(session.Select(cmd.FlightID))
		case "clear":
			session.ClearSelection()
		default:
			reply = &streamMessage{Type: "error", Message: "unknown command " + cmd.Type}
		}

		if reply == nil {
			continue
		}
		select {
		case replies <- *reply:
		case <-stop:
			return
		}
	}
}

func commandError(err error) *streamMessage {
	if err == nil {
		return nil
	}
	code := services.ErrorCode(err)
	return &streamMessage{Type: "error", Code: code, Message: constants.GetErrorMessage(code)}
}
