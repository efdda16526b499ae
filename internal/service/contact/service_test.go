package contact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

type memoryRepository struct {
	mu    sync.Mutex
	items map[string]model.ContactMessageItem
}

func (m *memoryRepository) Create(ctx context.Context, item model.ContactMessageItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.MessageID] = item
	return nil
}

func (m *memoryRepository) List(ctx context.Context) ([]model.ContactMessageItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ContactMessageItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryRepository) MarkRead(ctx context.Context, id string) (model.ContactMessageItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return model.ContactMessageItem{}, ErrNotFound
	}
	item.Read = true
	m.items[id] = item
	return item, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var admin = policy.Identity{UserID: "a1", Role: model.RoleAdmin}

func newTestService() (*Service, *memoryRepository) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	repo := &memoryRepository{items: make(map[string]model.ContactMessageItem)}
	return NewWithRepository(repo, now, nil), repo
}

func TestCreateAndList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "Sara", "+20100", "Hello")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, _ := svc.Create(ctx, "Omar", "+20111", "Hi again")

	items, err := svc.List(ctx, admin)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 || items[0].MessageID != second.MessageID || items[1].MessageID != first.MessageID {
		t.Fatalf("expected newest first, got %+v", items)
	}
	if items[0].Read {
		t.Fatal("new message should be unread")
	}

	if _, err := svc.List(ctx, policy.Identity{UserID: "u1", Role: model.RoleUser}); err == nil {
		t.Fatal("expected non-admin List to fail")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	for _, tc := range []struct{ name, phone, text string }{
		{"", "1", "t"},
		{"n", " ", "t"},
		{"n", "1", ""},
		{"n", "1", strings.Repeat("x", maxTextRunes+1)},
	} {
		_, err := svc.Create(context.Background(), tc.name, tc.phone, tc.text)
		var svcErr *Error
		if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
}

func TestMarkReadAndDelete(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	item, _ := svc.Create(ctx, "Sara", "+20100", "Hello")

	read, err := svc.MarkRead(ctx, admin, item.MessageID)
	if err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if !read.Read {
		t.Fatal("expected message to be read")
	}

	if err := svc.Delete(ctx, admin, item.MessageID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("message was not deleted")
	}

	err = svc.Delete(ctx, admin, item.MessageID)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
