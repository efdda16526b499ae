package websocket

import (
	"sync"
	"time"

	"flex-design-backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 70 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 16
	readLimit    = 4096
)

type WSClient struct {
	Conn     *websocket.Conn
	Message  chan *Envelope
	ID       string
	UserID   string
	Stream   string
	done     chan struct{} // closed once the client must stop
	once     sync.Once
	mu       sync.Mutex // guards Conn writes
	isClosed bool
	log      *logger.Logger
}

func newClient(conn *websocket.Conn, id, userID, stream string, log *logger.Logger) *WSClient {
	return &WSClient{
		Conn:    conn,
		Message: make(chan *Envelope, sendBuffer),
		ID:      id,
		UserID:  userID,
		Stream:  stream,
		done:    make(chan struct{}),
		log:     log.With("client_id", id, "stream", stream),
	}
}

// Send queues a snapshot. A client whose buffer is full is disconnected
// rather than allowed to stall the subscription.
func (cl *WSClient) Send(kind string, data interface{}) {
	select {
	case <-cl.done:
		return
	default:
	}

	msg := &Envelope{Type: kind, Data: data, Timestamp: time.Now().UnixMilli()}
	select {
	case cl.Message <- msg:
	default:
		cl.log.Warn("Websocket client too slow, disconnecting")
		cl.stop()
	}
}

func (cl *WSClient) stop() {
	cl.once.Do(func() {
		close(cl.done)
	})
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			cl.mu.Unlock()

			if err != nil {
				cl.log.Debug("Websocket ping failed", "error", err)
				cl.stop()
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		_ = cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			cl.mu.Lock()
			_ = cl.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			cl.mu.Unlock()
			return
		case msg := <-cl.Message:
			cl.mu.Lock()
			_ = cl.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.Conn.WriteJSON(msg)
			cl.mu.Unlock()

			if err != nil {
				cl.log.Warn("Websocket write failed", "error", err)
				cl.stop()
				return
			}
			addDelivered(cl.Stream)
		}
	}
}

// readMessage drains the connection until the peer goes away. Subscribers do
// not send data frames; reading keeps pong and close handling alive.
func (cl *WSClient) readMessage(hub *Hub, onClose func()) {
	defer func() {
		if r := recover(); r != nil {
			cl.log.Error("Recovered from panic in websocket reader", "panic", r)
		}
		cl.stop()
		onClose()
		hub.unregister(cl)
		cl.log.Info("Websocket client disconnected", "user_id", cl.UserID)
	}()

	cl.Conn.SetReadLimit(readLimit)
	_ = cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.Conn.SetPongHandler(func(string) error {
		return cl.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				cl.log.Debug("Websocket read failed", "error", err)
			}
			return
		}
	}
}
