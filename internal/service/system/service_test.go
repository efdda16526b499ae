package system

import (
	"context"
	"errors"
	"sync"
	"testing"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"
)

type memoryStore struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	failOn string
}

func (m *memoryStore) Clear(ctx context.Context, table string) (int, error) {
	if table == m.failOn {
		return 0, errors.New("throttled")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.tables[table])
	delete(m.tables, table)
	return n, nil
}

func (m *memoryStore) Count(ctx context.Context, table string, filter *Filter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.tables[table] {
		if filter == nil {
			n++
			continue
		}
		for _, v := range filter.OneOf {
			if item[filter.Attribute] == v {
				n++
				break
			}
		}
	}
	return n, nil
}

func seededStore() *memoryStore {
	store := &memoryStore{tables: make(map[string][]map[string]interface{})}
	store.tables[model.UsersTable] = []map[string]interface{}{{"userId": "u1"}, {"userId": "u2"}}
	store.tables[model.VisitorsTable] = []map[string]interface{}{{"deviceId": "d1"}}
	store.tables[model.DesignRequestsTable] = []map[string]interface{}{
		{"status": "PENDING"}, {"status": "PENDING"}, {"status": "COMPLETED"},
	}
	store.tables[model.ContactMessagesTable] = []map[string]interface{}{{"read": false}, {"read": true}}
	store.tables[model.BannersTable] = []map[string]interface{}{{"isActive": true}, {"isActive": false}}
	store.tables[model.SupportSessionsTable] = []map[string]interface{}{
		{"status": "WAITING"}, {"status": "ACTIVE"}, {"status": "CLOSED"},
	}
	for _, table := range []string{model.NotificationsTable, model.AnnouncementsTable, model.AnnouncementReadsTable, model.SupportMessagesTable} {
		store.tables[table] = []map[string]interface{}{{"id": "x"}}
	}
	return store
}

var admin = policy.Identity{UserID: "a1", Role: model.RoleAdmin}

func TestWipeClearsEverythingButUsers(t *testing.T) {
	store := seededStore()
	svc := NewWithStore(store, realtime.NewMemoryBus(), nil)

	report, err := svc.Wipe(context.Background(), admin, ConfirmPhrase, ConfirmPhrase)
	if err != nil {
		t.Fatalf("Wipe returned error: %v", err)
	}
	if len(report.Tables) != len(WipeTables) {
		t.Fatalf("expected a result per table, got %d", len(report.Tables))
	}
	for _, table := range WipeTables {
		if len(store.tables[table]) != 0 {
			t.Fatalf("table %s was not cleared", table)
		}
	}
	if len(store.tables[model.UsersTable]) != 2 {
		t.Fatal("users must survive a wipe")
	}
	if report.Deleted() != 3+2+2+3+4 {
		t.Fatalf("unexpected deleted total %d", report.Deleted())
	}
}

func TestWipeRequiresAdminAndDoubleConfirmation(t *testing.T) {
	store := seededStore()
	svc := NewWithStore(store, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name           string
		caller         policy.Identity
		confirm, again string
		code           ErrorCode
	}{
		{"non-admin", policy.Identity{UserID: "u1", Role: model.RoleUser}, ConfirmPhrase, ConfirmPhrase, ErrorCodeForbidden},
		{"single confirmation", admin, ConfirmPhrase, "", ErrorCodeValidation},
		{"wrong phrase", admin, "delete all data", "delete all data", ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Wipe(ctx, tc.caller, tc.confirm, tc.again)
			var svcErr *Error
			if !errors.As(err, &svcErr) || svcErr.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
	if len(store.tables[model.DesignRequestsTable]) != 3 {
		t.Fatal("rejected wipe must not delete anything")
	}
}

func TestWipeReportsFailedTable(t *testing.T) {
	store := seededStore()
	store.failOn = model.BannersTable
	svc := NewWithStore(store, nil, nil)

	report, err := svc.Wipe(context.Background(), admin, ConfirmPhrase, ConfirmPhrase)
	if err == nil {
		t.Fatal("expected an error when a table fails")
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Table != model.BannersTable {
		t.Fatalf("unexpected failed tables %+v", failed)
	}
	if len(store.tables[model.DesignRequestsTable]) != 0 {
		t.Fatal("other tables should still be wiped")
	}
}

func TestStats(t *testing.T) {
	svc := NewWithStore(seededStore(), nil, nil)

	stats, err := svc.Stats(context.Background(), admin)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Users != 2 || stats.Requests != 3 || stats.Visitors != 1 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.RequestsByStatus[model.RequestPending] != 2 || stats.RequestsByStatus[model.RequestCompleted] != 1 {
		t.Fatalf("unexpected status counts %+v", stats.RequestsByStatus)
	}
	if stats.UnreadMessages != 1 || stats.ActiveBanners != 1 || stats.OpenSupportSessions != 2 {
		t.Fatalf("unexpected filtered counts %+v", stats)
	}
}

func TestWipeSignalsSystemReset(t *testing.T) {
	bus := realtime.NewMemoryBus()
	svc := NewWithStore(seededStore(), bus, nil)
	ctx := context.Background()

	var resets int
	unsub, _ := bus.Subscribe(ctx, realtime.TopicSystemReset, func() { resets++ })
	defer unsub()

	if _, err := svc.Wipe(ctx, admin, ConfirmPhrase, ConfirmPhrase); err != nil {
		t.Fatalf("Wipe returned error: %v", err)
	}
	if resets != 1 {
		t.Fatalf("expected one reset signal, got %d", resets)
	}
}
