package notification

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeForbidden    ErrorCode = "forbidden"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

type CreateParams struct {
	UserID  string
	Title   string
	Message string
	Type    model.NotificationType
}

type Service struct {
	repo Repository
	bus  realtime.Bus
	now  func() time.Time
	log  *logger.Logger
}

func New(db *database.Database, bus realtime.Bus, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), bus, nil, log)
}

func NewWithRepository(repo Repository, bus realtime.Bus, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, bus: bus, now: now, log: log.With("service", "NotificationService")}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (model.NotificationItem, error) {
	userID := strings.TrimSpace(params.UserID)
	title := strings.TrimSpace(params.Title)
	if userID == "" || title == "" {
		return model.NotificationItem{}, newError(ErrorCodeValidation, "userId and title are required", nil)
	}
	kind := params.Type
	if kind == "" {
		kind = model.NotificationInfo
	}
	if !kind.Valid() {
		return model.NotificationItem{}, newError(ErrorCodeValidation, "invalid notification type", nil)
	}

	item := model.NotificationItem{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Message:        strings.TrimSpace(params.Message),
		Type:           kind,
		IsRead:         false,
		CreatedAt:      model.FormatTime(s.now()),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return model.NotificationItem{}, newError(ErrorCodeInternal, "failed to create notification", err)
	}
	s.publish(ctx, userID)
	return item, nil
}

// ListForUser returns the caller's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, caller policy.Identity) ([]model.NotificationItem, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	return s.list(ctx, caller.UserID)
}

func (s *Service) MarkRead(ctx context.Context, caller policy.Identity, notificationID string) error {
	if caller.UserID == "" {
		return newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	item, err := s.repo.Get(ctx, strings.TrimSpace(notificationID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "notification not found", err)
		}
		return newError(ErrorCodeInternal, "failed to load notification", err)
	}
	if item.UserID != caller.UserID {
		return newError(ErrorCodeForbidden, "notification belongs to another user", nil)
	}
	if item.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, item.NotificationID); err != nil {
		return newError(ErrorCodeInternal, "failed to mark notification read", err)
	}
	s.publish(ctx, caller.UserID)
	return nil
}

// MarkAllRead marks every unread notification of the caller and returns how
// many changed.
func (s *Service) MarkAllRead(ctx context.Context, caller policy.Identity) (int, error) {
	items, err := s.ListForUser(ctx, caller)
	if err != nil {
		return 0, err
	}
	unread := make([]model.NotificationItem, 0, len(items))
	for _, item := range items {
		if !item.IsRead {
			item.IsRead = true
			unread = append(unread, item)
		}
	}
	if len(unread) == 0 {
		return 0, nil
	}
	if err := s.repo.PutAll(ctx, unread); err != nil {
		return 0, newError(ErrorCodeInternal, "failed to mark notifications read", err)
	}
	s.publish(ctx, caller.UserID)
	return len(unread), nil
}

// Subscribe delivers the caller's notifications now and after every change.
func (s *Service) Subscribe(ctx context.Context, caller policy.Identity, fn func([]model.NotificationItem)) (realtime.CancelFunc, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	if s.bus == nil {
		return nil, newError(ErrorCodeInternal, "realtime bus not configured", nil)
	}
	return realtime.Watch(ctx, s.bus, []string{realtime.NotificationsTopic(caller.UserID), realtime.TopicSystemReset}, func(ctx context.Context) {
		items, err := s.list(ctx, caller.UserID)
		if err != nil {
			s.log.Warn("Notification refresh failed", "user_id", caller.UserID, "error", err)
			return
		}
		fn(items)
	})
}

func (s *Service) list(ctx context.Context, userID string) ([]model.NotificationItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list notifications", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, realtime.NotificationsTopic(userID)); err != nil {
		s.log.Warn("Failed to publish notification change", "user_id", userID, "error", err)
	}
}
