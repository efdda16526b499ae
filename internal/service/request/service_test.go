package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/service/notification"
)

type memoryRepository struct {
	mu    sync.Mutex
	items map[string]model.DesignRequestItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[string]model.DesignRequestItem)}
}

func (m *memoryRepository) Create(ctx context.Context, item model.DesignRequestItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.RequestID] = item
	return nil
}

func (m *memoryRepository) ListByUser(ctx context.Context, userID string) ([]model.DesignRequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DesignRequestItem
	for _, item := range m.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListAll(ctx context.Context) ([]model.DesignRequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DesignRequestItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, id string, status model.RequestStatus) (model.DesignRequestItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return model.DesignRequestItem{}, ErrNotFound
	}
	item.Status = status
	m.items[id] = item
	return item, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateParams
	err  error
}

func (r *recordingNotifier) Create(ctx context.Context, params notification.CreateParams) (model.NotificationItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, params)
	return model.NotificationItem{}, r.err
}

var (
	customer = policy.Identity{UserID: "u1", Email: "client@example.com", Role: model.RoleUser}
	admin    = policy.Identity{UserID: "a1", Role: model.RoleAdmin}
)

func newTestService(t *testing.T) (*Service, *memoryRepository, *recordingNotifier) {
	t.Helper()
	site, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default returned error: %v", err)
	}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	repo := newMemoryRepository()
	notifier := &recordingNotifier{}
	return NewWithRepository(repo, notifier, site, now, nil), repo, notifier
}

func validParams() CreateParams {
	return CreateParams{
		ClientName:  "Client",
		Email:       "client@example.com",
		ProjectType: model.ProjectLogo,
		Description: "A new logo",
		Budget:      "$100",
	}
}

func TestCreateRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	item, err := svc.Create(context.Background(), &customer, validParams())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if item.Status != model.RequestPending || item.UserID != customer.UserID {
		t.Fatalf("unexpected request %+v", item)
	}

	anonymous, err := svc.Create(context.Background(), nil, validParams())
	if err != nil {
		t.Fatalf("anonymous Create returned error: %v", err)
	}
	if anonymous.UserID != "" {
		t.Fatalf("anonymous request should have no owner, got %q", anonymous.UserID)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := map[string]func(p *CreateParams){
		"missing name":      func(p *CreateParams) { p.ClientName = " " },
		"bad email":         func(p *CreateParams) { p.Email = "not-an-email" },
		"unknown project":   func(p *CreateParams) { p.ProjectType = "PAINTING" },
		"empty description": func(p *CreateParams) { p.Description = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := validParams()
			mutate(&params)
			_, err := svc.Create(context.Background(), &customer, params)
			var svcErr *Error
			if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestListsAreNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, &customer, validParams())
	second, _ := svc.Create(ctx, &customer, validParams())
	_, _ = svc.Create(ctx, nil, validParams())

	mine, err := svc.ListForUser(ctx, customer)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(mine) != 2 || mine[0].RequestID != second.RequestID || mine[1].RequestID != first.RequestID {
		t.Fatalf("unexpected user list %+v", mine)
	}

	if _, err := svc.ListAll(ctx, customer); err == nil {
		t.Fatal("expected non-admin ListAll to fail")
	}
	all, err := svc.ListAll(ctx, admin)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(all))
	}
}

func TestUpdateStatusNotifiesOwner(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	item, _ := svc.Create(ctx, &customer, validParams())

	updated, err := svc.UpdateStatus(ctx, admin, item.RequestID, model.RequestCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != model.RequestCompleted {
		t.Fatalf("unexpected status %q", updated.Status)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	sent := notifier.sent[0]
	if sent.UserID != customer.UserID || sent.Type != model.NotificationSuccess {
		t.Fatalf("unexpected notification %+v", sent)
	}
}

func TestUpdateStatusWithoutOwnerSkipsNotification(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	item, _ := svc.Create(ctx, nil, validParams())
	if _, err := svc.UpdateStatus(ctx, admin, item.RequestID, model.RequestRejected); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification, got %d", len(notifier.sent))
	}
}

func TestUpdateStatusToleratesNotifierFailure(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	notifier.err = errors.New("notifications down")

	item, _ := svc.Create(ctx, &customer, validParams())
	if _, err := svc.UpdateStatus(ctx, admin, item.RequestID, model.RequestInProgress); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if repo.items[item.RequestID].Status != model.RequestInProgress {
		t.Fatal("status change was lost")
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	item, _ := svc.Create(ctx, &customer, validParams())

	cases := []struct {
		name   string
		caller policy.Identity
		id     string
		status model.RequestStatus
		code   ErrorCode
	}{
		{"non-admin", customer, item.RequestID, model.RequestCompleted, ErrorCodeForbidden},
		{"bad status", admin, item.RequestID, "DONE", ErrorCodeValidation},
		{"missing", admin, "nope", model.RequestCompleted, ErrorCodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(ctx, tc.caller, tc.id, tc.status)
			var svcErr *Error
			if !errors.As(err, &svcErr) || svcErr.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}
