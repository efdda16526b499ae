// Package system holds the back-office operations that span every table:
// the dashboard statistics and the irreversible data wipe.
package system

import (
	"context"
	"sync"
	"time"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"

	"golang.org/x/sync/errgroup"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeForbidden  ErrorCode = "forbidden"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// ConfirmPhrase must be typed twice to run a wipe.
const ConfirmPhrase = "DELETE ALL DATA"

// WipeTables lists every table a wipe clears. Users is never part of it.
var WipeTables = []string{
	model.DesignRequestsTable,
	model.ContactMessagesTable,
	model.NotificationsTable,
	model.AnnouncementsTable,
	model.AnnouncementReadsTable,
	model.BannersTable,
	model.SupportSessionsTable,
	model.SupportMessagesTable,
}

type TableResult struct {
	Table   string
	Deleted int
	Err     error
}

type WipeReport struct {
	Tables []TableResult
}

func (r WipeReport) Deleted() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Deleted
	}
	return total
}

func (r WipeReport) Failed() []TableResult {
	var failed []TableResult
	for _, t := range r.Tables {
		if t.Err != nil {
			failed = append(failed, t)
		}
	}
	return failed
}

type Stats struct {
	Users               int
	Requests            int
	RequestsByStatus    map[model.RequestStatus]int
	ContactMessages     int
	UnreadMessages      int
	ActiveBanners       int
	OpenSupportSessions int
	Visitors            int
}

type Service struct {
	store Store
	bus   realtime.Bus
	log   *logger.Logger
}

func New(db *database.Database, bus realtime.Bus, log *logger.Logger) *Service {
	return NewWithStore(NewDynamoStore(db), bus, log)
}

func NewWithStore(store Store, bus realtime.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, bus: bus, log: log.With("service", "SystemService")}
}

// Wipe clears every table in WipeTables in parallel. Tables are independent:
// one failing table does not stop the others, and the report says which
// failed so the wipe can be re-run.
func (s *Service) Wipe(ctx context.Context, admin policy.Identity, confirm, confirmAgain string) (WipeReport, error) {
	if !admin.IsAdmin() {
		return WipeReport{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if confirm != ConfirmPhrase || confirmAgain != ConfirmPhrase {
		return WipeReport{}, newError(ErrorCodeValidation, "both confirmations must equal "+ConfirmPhrase, nil)
	}
	return s.WipeAll(ctx, admin.UserID)
}

// WipeAll runs the wipe without the caller checks, for operator tooling.
func (s *Service) WipeAll(ctx context.Context, actor string) (WipeReport, error) {
	started := time.Now()
	s.log.Info("Data wipe started", "actor", actor, "tables", len(WipeTables))

	results := make([]TableResult, len(WipeTables))
	var g errgroup.Group
	for i, table := range WipeTables {
		i, table := i, table
		g.Go(func() error {
			deleted, err := s.store.Clear(ctx, table)
			results[i] = TableResult{Table: table, Deleted: deleted, Err: err}
			if err != nil {
				s.log.Error("Failed to wipe table", "table", table, "error", err)
				return nil
			}
			s.log.Info("Table wiped", "table", table, "deleted", deleted)
			return nil
		})
	}
	_ = g.Wait()

	report := WipeReport{Tables: results}
	s.log.Info("Data wipe finished", "actor", actor, "deleted", report.Deleted(), "failed_tables", len(report.Failed()), "duration", time.Since(started))

	if s.bus != nil {
		if err := realtime.PublishAll(ctx, s.bus, realtime.TopicSystemReset, realtime.TopicSupportSessions, realtime.TopicAnnouncements); err != nil {
			s.log.Warn("Failed to publish wipe", "error", err)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, newError(ErrorCodeInternal, "some tables could not be wiped", failed[0].Err)
	}
	return report, nil
}

// Stats returns real counts; display offsets are applied by the caller.
func (s *Service) Stats(ctx context.Context, admin policy.Identity) (Stats, error) {
	if !admin.IsAdmin() {
		return Stats{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}

	stats := Stats{RequestsByStatus: make(map[model.RequestStatus]int)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	count := func(table string, filter *Filter, assign func(n int)) {
		g.Go(func() error {
			n, err := s.store.Count(gctx, table, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			assign(n)
			mu.Unlock()
			return nil
		})
	}

	count(model.UsersTable, nil, func(n int) { stats.Users = n })
	count(model.DesignRequestsTable, nil, func(n int) { stats.Requests = n })
	for _, status := range []model.RequestStatus{model.RequestPending, model.RequestInProgress, model.RequestCompleted, model.RequestRejected} {
		status := status
		count(model.DesignRequestsTable, &Filter{Attribute: "status", OneOf: []interface{}{string(status)}}, func(n int) {
			stats.RequestsByStatus[status] = n
		})
	}
	count(model.ContactMessagesTable, nil, func(n int) { stats.ContactMessages = n })
	count(model.ContactMessagesTable, &Filter{Attribute: "read", OneOf: []interface{}{false}}, func(n int) { stats.UnreadMessages = n })
	count(model.BannersTable, &Filter{Attribute: "isActive", OneOf: []interface{}{true}}, func(n int) { stats.ActiveBanners = n })
	count(model.SupportSessionsTable, &Filter{
		Attribute: "status",
		OneOf:     []interface{}{string(model.SupportStatusWaiting), string(model.SupportStatusActive)},
	}, func(n int) { stats.OpenSupportSessions = n })
	count(model.VisitorsTable, nil, func(n int) { stats.Visitors = n })

	if err := g.Wait(); err != nil {
		return Stats{}, newError(ErrorCodeInternal, "failed to collect stats", err)
	}
	return stats, nil
}
