package websocket

import (
	"context"

	"flex-design-backend/internal/realtime"
)

// Envelope is the frame pushed to subscribers.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// SendFunc queues one snapshot for the client. It never blocks.
type SendFunc func(kind string, data interface{})

// Subscribe opens one service subscription that pushes snapshots through send
// until the returned CancelFunc is called.
type Subscribe func(ctx context.Context, send SendFunc) (realtime.CancelFunc, error)

type Room struct {
	Name    string
	Clients map[string]*WSClient
}

type StreamError struct {
	Message string `json:"message"`
}
