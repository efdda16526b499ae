package announcement

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
	mu            sync.Mutex
	announcements map[string]model.AnnouncementItem
	reads         map[string]model.AnnouncementReadItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		announcements: make(map[string]model.AnnouncementItem),
		reads:         make(map[string]model.AnnouncementReadItem),
	}
}

func (m *memoryRepository) Create(ctx context.Context, item model.AnnouncementItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcements[item.AnnouncementID] = item
	return nil
}

func (m *memoryRepository) Get(ctx context.Context, id string) (model.AnnouncementItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.announcements[id]
	if !ok {
		return model.AnnouncementItem{}, ErrNotFound
	}
	return item, nil
}

func (m *memoryRepository) List(ctx context.Context) ([]model.AnnouncementItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AnnouncementItem, 0, len(m.announcements))
	for _, item := range m.announcements {
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[id]; !ok {
		return ErrNotFound
	}
	delete(m.announcements, id)
	return nil
}

func (m *memoryRepository) PutRead(ctx context.Context, read model.AnnouncementReadItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[read.ReadID] = read
	return nil
}

func (m *memoryRepository) ListReads(ctx context.Context, userID string) ([]model.AnnouncementReadItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AnnouncementReadItem
	for _, read := range m.reads {
		if read.UserID == userID {
			out = append(out, read)
		}
	}
	return out, nil
}

var (
	admin = policy.Identity{UserID: "admin-1", Name: "Admin", Role: model.RoleAdmin}
	user  = policy.Identity{UserID: "u1", Role: model.RoleUser}
)

func newTestService() (*Service, *memoryRepository) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	repo := newMemoryRepository()
	return NewWithRepository(repo, realtime.NewMemoryBus(), now, nil), repo
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), user, "t", "m")
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	item, err := svc.Create(context.Background(), admin, "Holiday", "Closed on Friday")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if item.CreatedBy != "Admin" {
		t.Fatalf("unexpected createdBy %q", item.CreatedBy)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, admin, "one", "m")
	second, _ := svc.Create(ctx, admin, "two", "m")

	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(ctx, user, first.AnnouncementID); err != nil {
			t.Fatalf("MarkRead returned error: %v", err)
		}
	}
	if len(repo.reads) != 1 {
		t.Fatalf("expected one read record, got %d", len(repo.reads))
	}
	if _, ok := repo.reads[user.UserID+"_"+first.AnnouncementID]; !ok {
		t.Fatal("read record not keyed by user and announcement")
	}

	feed, err := svc.Feed(ctx, user)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if len(feed.Announcements) != 2 || feed.Announcements[0].AnnouncementID != second.AnnouncementID {
		t.Fatalf("unexpected announcements %+v", feed.Announcements)
	}
	if len(feed.ReadIDs) != 1 || feed.ReadIDs[0] != first.AnnouncementID {
		t.Fatalf("unexpected read ids %v", feed.ReadIDs)
	}

	err = svc.MarkRead(ctx, user, "missing")
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscribeSeesBroadcastAndReads(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	feeds := make(chan Feed, 16)
	cancel, err := svc.Subscribe(ctx, user, func(feed Feed) { feeds <- feed })
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer cancel()

	item, _ := svc.Create(ctx, admin, "News", "Body")
	waitFeed(t, feeds, func(f Feed) bool { return len(f.Announcements) == 1 && len(f.ReadIDs) == 0 })

	_ = svc.MarkRead(ctx, user, item.AnnouncementID)
	waitFeed(t, feeds, func(f Feed) bool { return len(f.ReadIDs) == 1 })
}

func waitFeed(t *testing.T, feeds <-chan Feed, ok func(Feed) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-feeds:
			if ok(f) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for feed")
		}
	}
}
