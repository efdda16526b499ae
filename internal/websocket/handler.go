package websocket

import (
	"context"
	"net/http"
	"time"

	"flex-design-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewHandler accepts connections from allowedOrigins. An empty list or "*"
// accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.With("component", "websocket"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Stream upgrades the request and pushes every snapshot produced by subscribe
// until the client disconnects. It returns as soon as the pumps are running.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request, stream, userID string, subscribe Subscribe) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		h.log.Warn("Websocket upgrade failed", "stream", stream, "error", err)
		return
	}

	cl := newClient(conn, uuid.NewString(), userID, stream, h.log)

	// The request context ends when this handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	unsubscribe, err := subscribe(ctx, cl.Send)
	if err != nil {
		cancel()
		h.log.Warn("Websocket subscription rejected", "stream", stream, "user_id", userID, "error", err)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(Envelope{Type: "error", Data: StreamError{Message: err.Error()}, Timestamp: time.Now().UnixMilli()})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscription rejected"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	if !h.hub.register(cl) {
		unsubscribe()
		cancel()
		_ = conn.Close()
		return
	}

	h.log.Info("Websocket client connected", "stream", stream, "user_id", userID, "client_id", cl.ID)

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub, func() {
		unsubscribe()
		cancel()
	})
}
