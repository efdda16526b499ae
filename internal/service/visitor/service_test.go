package visitor

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
	items map[string]model.VisitorItem
}

func (m *memoryRepository) Record(ctx context.Context, deviceID, userAgent, userID, ts string) (model.VisitorItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[deviceID]
	if !ok {
		item = model.VisitorItem{DeviceID: deviceID, FirstVisit: ts}
	}
	item.UserAgent = userAgent
	item.LastVisit = ts
	item.VisitCount++
	if userID != "" {
		item.UserID = userID
		item.IsRegistered = true
	}
	m.items[deviceID] = item
	return item, nil
}

func (m *memoryRepository) List(ctx context.Context) ([]model.VisitorItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.VisitorItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func newTestService() *Service {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return NewWithRepository(&memoryRepository{items: make(map[string]model.VisitorItem)}, now, nil)
}

func TestTrackUpserts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Track(ctx, "dev-1", "Mozilla/5.0", nil)
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if first.VisitCount != 1 || first.IsRegistered {
		t.Fatalf("unexpected first visit %+v", first)
	}

	user := &policy.Identity{UserID: "u1", Role: model.RoleUser}
	second, err := svc.Track(ctx, "dev-1", "Mozilla/5.0", user)
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if second.VisitCount != 2 || !second.IsRegistered || second.UserID != "u1" {
		t.Fatalf("unexpected second visit %+v", second)
	}
	if second.FirstVisit != first.FirstVisit || second.LastVisit <= first.LastVisit {
		t.Fatalf("visit timestamps not maintained: %+v", second)
	}
}

func TestTrackValidation(t *testing.T) {
	svc := newTestService()
	for _, id := range []string{"", "   ", strings.Repeat("d", maxDeviceIDLen+1)} {
		_, err := svc.Track(context.Background(), id, "ua", nil)
		var svcErr *Error
		if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
			t.Fatalf("expected validation error for %q, got %v", id, err)
		}
	}
}

func TestListMostRecentFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, _ = svc.Track(ctx, "dev-1", "ua", nil)
	_, _ = svc.Track(ctx, "dev-2", "ua", nil)
	_, _ = svc.Track(ctx, "dev-1", "ua", nil)

	if _, err := svc.List(ctx, policy.Identity{UserID: "u1", Role: model.RoleUser}); err == nil {
		t.Fatal("expected non-admin List to fail")
	}
	items, err := svc.List(ctx, policy.Identity{UserID: "a1", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 || items[0].DeviceID != "dev-1" {
		t.Fatalf("unexpected order %+v", items)
	}
}
