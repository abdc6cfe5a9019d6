package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// SessionExists reports whether a page session id is live.
type SessionExists func(id string) bool

// HandleWebSocket returns an HTTP handler that upgrades GET
// /ws/sessions/{id} to a WebSocket watching that page session.
func HandleWebSocket(hub *Hub, exists SessionExists) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" || (exists != nil && !exists(id)) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "session", id, "error", err)
			return
		}

		client := NewClient(hub, conn, id)
		client.Run(r.Context())
	}
}
