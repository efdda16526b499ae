package websocket

import (
	"context"

	"flex-design-backend/internal/logger"
)

// Hub tracks live clients grouped into one room per stream. All room state is
// owned by the Run goroutine.
type Hub struct {
	Rooms      map[string]*Room
	Register   chan *WSClient
	Unregister chan *WSClient
	done       chan struct{}
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		Rooms:      make(map[string]*Room),
		Register:   make(chan *WSClient),
		Unregister: make(chan *WSClient),
		done:       make(chan struct{}),
		log:        log.With("component", "websocket_hub"),
	}
}

// Run serves registrations until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, room := range h.Rooms {
				for _, client := range room.Clients {
					client.stop()
					decConnections(room.Name)
				}
			}
			h.Rooms = make(map[string]*Room)
			h.log.Info("Websocket hub stopped")
			return

		case client := <-h.Register:
			room, ok := h.Rooms[client.Stream]
			if !ok {
				room = &Room{Name: client.Stream, Clients: make(map[string]*WSClient)}
				h.Rooms[client.Stream] = room
			}
			room.Clients[client.ID] = client
			incConnections(room.Name)

		case client := <-h.Unregister:
			room, ok := h.Rooms[client.Stream]
			if !ok {
				continue
			}
			if _, ok := room.Clients[client.ID]; ok {
				delete(room.Clients, client.ID)
				decConnections(room.Name)
			}
			if len(room.Clients) == 0 {
				delete(h.Rooms, room.Name)
			}
		}
	}
}

func (h *Hub) register(cl *WSClient) bool {
	select {
	case h.Register <- cl:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(cl *WSClient) {
	select {
	case h.Unregister <- cl:
	case <-h.done:
	}
}
