package visitor

import (
	"context"
	"sort"
	"strings"
	"time"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
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

const (
	maxDeviceIDLen  = 128
	maxUserAgentLen = 512
)

type Service struct {
	repo Repository
	now  func() time.Time
	log  *logger.Logger
}

func New(db *database.Database, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), nil, log)
}

func NewWithRepository(repo Repository, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, now: now, log: log.With("service", "VisitorService")}
}

// Track records one visit from a browser. caller is nil for anonymous visits.
func (s *Service) Track(ctx context.Context, deviceID, userAgent string, caller *policy.Identity) (model.VisitorItem, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" || len(deviceID) > maxDeviceIDLen {
		return model.VisitorItem{}, newError(ErrorCodeValidation, "invalid deviceId", nil)
	}
	userAgent = strings.TrimSpace(userAgent)
	if len(userAgent) > maxUserAgentLen {
		userAgent = userAgent[:maxUserAgentLen]
	}
	var userID string
	if caller != nil {
		userID = caller.UserID
	}

	item, err := s.repo.Record(ctx, deviceID, userAgent, userID, model.FormatTime(s.now()))
	if err != nil {
		return model.VisitorItem{}, newError(ErrorCodeInternal, "failed to record visit", err)
	}
	return item, nil
}

// List returns every visitor, most recent visit first.
func (s *Service) List(ctx context.Context, admin policy.Identity) ([]model.VisitorItem, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list visitors", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastVisit > items[j].LastVisit
	})
	return items, nil
}
