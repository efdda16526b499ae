package request

import (
	"context"
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/service/notification"

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

// Notifier delivers the status-change notice to the request owner.
type Notifier interface {
	Create(ctx context.Context, params notification.CreateParams) (model.NotificationItem, error)
}

type CreateParams struct {
	ClientName  string
	Email       string
	ProjectType model.ProjectType
	Description string
	Budget      string
}

type Service struct {
	repo     Repository
	notifier Notifier
	notices  map[string]config.RequestNotice
	now      func() time.Time
	log      *logger.Logger
}

func New(db *database.Database, notifier Notifier, site *config.Site, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), notifier, site, nil, log)
}

func NewWithRepository(repo Repository, notifier Notifier, site *config.Site, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	var notices map[string]config.RequestNotice
	if site != nil {
		notices = site.RequestNotices
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		notices:  notices,
		now:      now,
		log:      log.With("service", "RequestService"),
	}
}

// Create stores a new PENDING design request. caller may be nil for a
// request submitted without an account.
func (s *Service) Create(ctx context.Context, caller *policy.Identity, params CreateParams) (model.DesignRequestItem, error) {
	clientName := strings.TrimSpace(params.ClientName)
	email := strings.TrimSpace(params.Email)
	description := strings.TrimSpace(params.Description)

	if clientName == "" || email == "" || description == "" {
		return model.DesignRequestItem{}, newError(ErrorCodeValidation, "clientName, email and description are required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.DesignRequestItem{}, newError(ErrorCodeValidation, "invalid email address", err)
	}
	if !params.ProjectType.Valid() {
		return model.DesignRequestItem{}, newError(ErrorCodeValidation, "unknown project type", nil)
	}

	item := model.DesignRequestItem{
		RequestID:   uuid.NewString(),
		ClientName:  clientName,
		Email:       email,
		ProjectType: params.ProjectType,
		Description: description,
		Budget:      strings.TrimSpace(params.Budget),
		Status:      model.RequestPending,
		CreatedAt:   model.FormatTime(s.now()),
	}
	if caller != nil {
		item.UserID = caller.UserID
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return model.DesignRequestItem{}, newError(ErrorCodeInternal, "failed to create request", err)
	}
	s.log.Info("Design request created", "request_id", item.RequestID, "project_type", item.ProjectType)
	return item, nil
}

func (s *Service) ListForUser(ctx context.Context, caller policy.Identity) ([]model.DesignRequestItem, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	items, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list requests", err)
	}
	sortNewestFirst(items)
	return items, nil
}

func (s *Service) ListAll(ctx context.Context, admin policy.Identity) ([]model.DesignRequestItem, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list requests", err)
	}
	sortNewestFirst(items)
	return items, nil
}

// UpdateStatus moves a request to status and notifies its owner. A failed
// notification is logged and does not undo the status change.
func (s *Service) UpdateStatus(ctx context.Context, admin policy.Identity, requestID string, status model.RequestStatus) (model.DesignRequestItem, error) {
	if !admin.IsAdmin() {
		return model.DesignRequestItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if !status.Valid() {
		return model.DesignRequestItem{}, newError(ErrorCodeValidation, "unknown request status", nil)
	}

	item, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(requestID), status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.DesignRequestItem{}, newError(ErrorCodeNotFound, "request not found", err)
		}
		return model.DesignRequestItem{}, newError(ErrorCodeInternal, "failed to update request", err)
	}
	s.log.Info("Design request status changed", "request_id", item.RequestID, "status", status, "admin_id", admin.UserID)

	s.notifyOwner(ctx, item)
	return item, nil
}

func (s *Service) notifyOwner(ctx context.Context, item model.DesignRequestItem) {
	if item.UserID == "" || s.notifier == nil {
		return
	}
	notice, ok := s.notices[string(item.Status)]
	if !ok {
		return
	}
	_, err := s.notifier.Create(ctx, notification.CreateParams{
		UserID:  item.UserID,
		Title:   notice.Title,
		Message: notice.Message,
		Type:    model.NotificationType(notice.Type),
	})
	if err != nil {
		s.log.Warn("Failed to notify request owner", "request_id", item.RequestID, "error", err)
	}
}

func sortNewestFirst(items []model.DesignRequestItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
}
