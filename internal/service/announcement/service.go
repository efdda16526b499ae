package announcement

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

// Feed is what a signed-in user sees: every announcement and the ids they
// have already read.
type Feed struct {
	Announcements []model.AnnouncementItem
	ReadIDs       []string
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
	return &Service{repo: repo, bus: bus, now: now, log: log.With("service", "AnnouncementService")}
}

func (s *Service) Create(ctx context.Context, admin policy.Identity, title, message string) (model.AnnouncementItem, error) {
	if !admin.IsAdmin() {
		return model.AnnouncementItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return model.AnnouncementItem{}, newError(ErrorCodeValidation, "title and message are required", nil)
	}

	createdBy := admin.Name
	if createdBy == "" {
		createdBy = admin.Email
	}
	item := model.AnnouncementItem{
		AnnouncementID: uuid.NewString(),
		Title:          title,
		Message:        message,
		CreatedAt:      model.FormatTime(s.now()),
		CreatedBy:      createdBy,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return model.AnnouncementItem{}, newError(ErrorCodeInternal, "failed to create announcement", err)
	}
	s.log.Info("Announcement broadcast", "announcement_id", item.AnnouncementID, "admin_id", admin.UserID)
	s.publish(ctx, realtime.TopicAnnouncements)
	return item, nil
}

// List returns every announcement, newest first.
func (s *Service) List(ctx context.Context) ([]model.AnnouncementItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list announcements", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

func (s *Service) Delete(ctx context.Context, admin policy.Identity, announcementID string) error {
	if !admin.IsAdmin() {
		return newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if err := s.repo.Delete(ctx, strings.TrimSpace(announcementID)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "announcement not found", err)
		}
		return newError(ErrorCodeInternal, "failed to delete announcement", err)
	}
	s.publish(ctx, realtime.TopicAnnouncements)
	return nil
}

// MarkRead records that the caller read an announcement. Repeated calls keep
// a single read record.
func (s *Service) MarkRead(ctx context.Context, caller policy.Identity, announcementID string) error {
	if caller.UserID == "" {
		return newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	announcementID = strings.TrimSpace(announcementID)
	if _, err := s.repo.Get(ctx, announcementID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "announcement not found", err)
		}
		return newError(ErrorCodeInternal, "failed to load announcement", err)
	}

	read := model.AnnouncementReadItem{
		ReadID:         model.AnnouncementReadID(caller.UserID, announcementID),
		UserID:         caller.UserID,
		AnnouncementID: announcementID,
		ReadAt:         model.FormatTime(s.now()),
	}
	if err := s.repo.PutRead(ctx, read); err != nil {
		return newError(ErrorCodeInternal, "failed to mark announcement read", err)
	}
	s.publish(ctx, realtime.AnnouncementReadsTopic(caller.UserID))
	return nil
}

func (s *Service) ReadIDs(ctx context.Context, caller policy.Identity) ([]string, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	reads, err := s.repo.ListReads(ctx, caller.UserID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list reads", err)
	}
	ids := make([]string, 0, len(reads))
	for _, read := range reads {
		ids = append(ids, read.AnnouncementID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Service) Feed(ctx context.Context, caller policy.Identity) (Feed, error) {
	items, err := s.List(ctx)
	if err != nil {
		return Feed{}, err
	}
	ids, err := s.ReadIDs(ctx, caller)
	if err != nil {
		return Feed{}, err
	}
	return Feed{Announcements: items, ReadIDs: ids}, nil
}

// Subscribe delivers the caller's feed after every broadcast and every read.
func (s *Service) Subscribe(ctx context.Context, caller policy.Identity, fn func(Feed)) (realtime.CancelFunc, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	if s.bus == nil {
		return nil, newError(ErrorCodeInternal, "realtime bus not configured", nil)
	}
	topics := []string{realtime.TopicAnnouncements, realtime.AnnouncementReadsTopic(caller.UserID), realtime.TopicSystemReset}
	return realtime.Watch(ctx, s.bus, topics, func(ctx context.Context) {
		feed, err := s.Feed(ctx, caller)
		if err != nil {
			s.log.Warn("Announcement refresh failed", "user_id", caller.UserID, "error", err)
			return
		}
		fn(feed)
	})
}

func (s *Service) publish(ctx context.Context, topic string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, topic); err != nil {
		s.log.Warn("Failed to publish announcement change", "topic", topic, "error", err)
	}
}
