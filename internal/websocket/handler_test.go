package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/realtime"

	"github.com/gorilla/websocket"
)

type fakeStream struct {
	mu        sync.Mutex
	send      SendFunc
	cancelled chan struct{}
}

func (f *fakeStream) subscribe(ctx context.Context, send SendFunc) (realtime.CancelFunc, error) {
	f.mu.Lock()
	f.send = send
	f.mu.Unlock()
	send("snapshot", []string{"first"})
	var once sync.Once
	return func() {
		once.Do(func() { close(f.cancelled) })
	}, nil
}

func (f *fakeStream) push(kind string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.send(kind, data)
}

func startServer(t *testing.T, subscribe Subscribe) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Nop())
	go hub.Run(ctx)
	handler := NewHandler(hub, nil, logger.Nop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Stream(w, r, "test", "u1", subscribe)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env map[string]interface{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	return env
}

func TestStreamPushesSnapshotsAndCancelsOnDisconnect(t *testing.T) {
	stream := &fakeStream{cancelled: make(chan struct{})}
	url := startServer(t, stream.subscribe)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}

	first := readEnvelope(t, conn)
	if first["type"] != "snapshot" {
		t.Fatalf("unexpected first frame %v", first)
	}
	if _, ok := first["timestamp"].(float64); !ok {
		t.Fatalf("frame missing timestamp: %v", first)
	}

	stream.push("snapshot", []string{"first", "second"})
	second := readEnvelope(t, conn)
	data, ok := second["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("unexpected second frame %v", second)
	}

	_ = conn.Close()

	select {
	case <-stream.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not cancelled after disconnect")
	}
}

func TestStreamReportsRejectedSubscription(t *testing.T) {
	url := startServer(t, func(ctx context.Context, send SendFunc) (realtime.CancelFunc, error) {
		return nil, errors.New("session not found")
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env["type"] != "error" {
		t.Fatalf("expected error frame, got %v", env)
	}
	data, _ := env["data"].(map[string]interface{})
	if data["message"] != "session not found" {
		t.Fatalf("unexpected error payload %v", env)
	}
}
