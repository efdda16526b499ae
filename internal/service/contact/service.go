package contact

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/logger"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeForbidden  ErrorCode = "forbidden"
	ErrorCodeNotFound   ErrorCode = "not_found"
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

const maxTextRunes = 5000

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
	return &Service{repo: repo, now: now, log: log.With("service", "ContactService")}
}

// Create stores a message from the public contact form.
func (s *Service) Create(ctx context.Context, name, phone, text string) (model.ContactMessageItem, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	text = strings.TrimSpace(text)
	if name == "" || phone == "" || text == "" {
		return model.ContactMessageItem{}, newError(ErrorCodeValidation, "name, phone and text are required", nil)
	}
	if utf8.RuneCountInString(text) > maxTextRunes {
		return model.ContactMessageItem{}, newError(ErrorCodeValidation, "message is too long", nil)
	}

	item := model.ContactMessageItem{
		MessageID: uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Text:      text,
		Date:      model.FormatTime(s.now()),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return model.ContactMessageItem{}, newError(ErrorCodeInternal, "failed to save message", err)
	}
	s.log.Info("Contact message received", "message_id", item.MessageID)
	return item, nil
}

func (s *Service) List(ctx context.Context, admin policy.Identity) ([]model.ContactMessageItem, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list messages", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, admin policy.Identity, messageID string) (model.ContactMessageItem, error) {
	if !admin.IsAdmin() {
		return model.ContactMessageItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	item, err := s.repo.MarkRead(ctx, strings.TrimSpace(messageID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ContactMessageItem{}, newError(ErrorCodeNotFound, "message not found", err)
		}
		return model.ContactMessageItem{}, newError(ErrorCodeInternal, "failed to update message", err)
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, admin policy.Identity, messageID string) error {
	if !admin.IsAdmin() {
		return newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if err := s.repo.Delete(ctx, strings.TrimSpace(messageID)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "message not found", err)
		}
		return newError(ErrorCodeInternal, "failed to delete message", err)
	}
	s.log.Info("Contact message deleted", "message_id", messageID, "admin_id", admin.UserID)
	return nil
}
