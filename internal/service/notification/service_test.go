package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"
)

type memoryRepository struct {
	mu    sync.Mutex
	items map[string]model.NotificationItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[string]model.NotificationItem)}
}

func (m *memoryRepository) Create(ctx context.Context, item model.NotificationItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.NotificationID] = item
	return nil
}

func (m *memoryRepository) Get(ctx context.Context, id string) (model.NotificationItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return model.NotificationItem{}, ErrNotFound
	}
	return item, nil
}

func (m *memoryRepository) ListByUser(ctx context.Context, userID string) ([]model.NotificationItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.NotificationItem
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.IsRead = true
	m.items[id] = item
	return nil
}

func (m *memoryRepository) PutAll(ctx context.Context, items []model.NotificationItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.NotificationID] = item
	}
	return nil
}

func newTestService() (*Service, *realtime.MemoryBus) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bus := realtime.NewMemoryBus()
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return NewWithRepository(newMemoryRepository(), bus, now, nil), bus
}

var (
	owner    = policy.Identity{UserID: "u1", Role: model.RoleUser}
	stranger = policy.Identity{UserID: "u2", Role: model.RoleUser}
)

func TestCreateAndListNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.Create(ctx, CreateParams{UserID: owner.UserID, Title: title}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	_, _ = svc.Create(ctx, CreateParams{UserID: stranger.UserID, Title: "other"})

	items, err := svc.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(items) != 3 || items[0].Title != "third" || items[2].Title != "first" {
		t.Fatalf("unexpected order %+v", items)
	}
	if items[0].Type != model.NotificationInfo {
		t.Fatalf("expected default type info, got %s", items[0].Type)
	}

	_, err = svc.Create(ctx, CreateParams{UserID: owner.UserID, Title: "x", Type: "loud"})
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkReadOwnerOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, _ := svc.Create(ctx, CreateParams{UserID: owner.UserID, Title: "hello"})

	err := svc.MarkRead(ctx, stranger, item.NotificationID)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := svc.MarkRead(ctx, owner, item.NotificationID); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	items, _ := svc.ListForUser(ctx, owner)
	if !items[0].IsRead {
		t.Fatal("notification not marked read")
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.Create(ctx, CreateParams{UserID: owner.UserID, Title: "n"})
	}
	first, _ := svc.ListForUser(ctx, owner)
	_ = svc.MarkRead(ctx, owner, first[0].NotificationID)

	changed, err := svc.MarkAllRead(ctx, owner)
	if err != nil {
		t.Fatalf("MarkAllRead returned error: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 changed, got %d", changed)
	}
	items, _ := svc.ListForUser(ctx, owner)
	for _, item := range items {
		if !item.IsRead {
			t.Fatalf("notification %s still unread", item.NotificationID)
		}
	}
}

func TestSubscribeReceivesNewNotifications(t *testing.T) {
	svc, bus := newTestService()
	ctx := context.Background()

	snapshots := make(chan []model.NotificationItem, 8)
	cancel, err := svc.Subscribe(ctx, owner, func(items []model.NotificationItem) {
		snapshots <- items
	})
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	_, _ = svc.Create(ctx, CreateParams{UserID: owner.UserID, Title: "ping"})

	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case items := <-snapshots:
			done = len(items) == 1 && items[0].Title == "ping"
		case <-deadline:
			t.Fatal("timed out waiting for notification snapshot")
		}
	}

	cancel()
	if n := bus.Subscribers(realtime.NotificationsTopic(owner.UserID)); n != 0 {
		t.Fatalf("expected subscription released, %d left", n)
	}
}
