package support

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"flex-design-backend/internal/config"
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
	ErrorCodeConflict     ErrorCode = "conflict"
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
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

const maxMessageLength = 4000

type Service struct {
	repo   Repository
	bus    realtime.Bus
	policy *policy.AdminPolicy
	opts   config.Support
	now    func() time.Time
	newID  func() string
	log    *logger.Logger

	clockMu sync.Mutex
	lastTS  time.Time
}

func New(db *database.Database, bus realtime.Bus, pol *policy.AdminPolicy, opts config.Support, log *logger.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db), bus, pol, opts, nil, log)
}

func NewWithRepository(repo Repository, bus realtime.Bus, pol *policy.AdminPolicy, opts config.Support, now func() time.Time, log *logger.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.ClaimMode == "" {
		opts.ClaimMode = config.ClaimLastWriteWins
	}
	if pol == nil {
		pol = policy.NewAdminPolicy("", nil)
	}
	return &Service{
		repo:   repo,
		bus:    bus,
		policy: pol,
		opts:   opts,
		now:    now,
		newID:  uuid.NewString,
		log:    log.With("service", "SupportService"),
	}
}

// CreateSession opens a WAITING session for the caller.
func (s *Service) CreateSession(ctx context.Context, caller policy.Identity) (model.SupportSessionItem, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return model.SupportSessionItem{}, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}

	if s.opts.SingleOpenSession {
		existing, ok, err := s.activeSession(ctx, caller.UserID)
		if err != nil {
			return model.SupportSessionItem{}, newError(ErrorCodeInternal, "failed to lookup open session", err)
		}
		if ok {
			return existing, nil
		}
	}

	nowStr := model.FormatTime(s.now())
	userName := strings.TrimSpace(caller.Name)
	if userName == "" {
		userName = caller.Email
	}

	session := model.SupportSessionItem{
		SessionID:     s.newID(),
		UserID:        caller.UserID,
		UserName:      userName,
		Status:        model.SupportStatusWaiting,
		CreatedAt:     nowStr,
		LastMessageAt: nowStr,
		UnreadByUser:  0,
		UnreadByAdmin: 1,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return model.SupportSessionItem{}, newError(ErrorCodeInternal, "failed to create session", err)
	}

	sessionsCreated.Inc()
	s.log.Info("Support session created", "session_id", session.SessionID, "user_id", session.UserID)
	s.publish(ctx, realtime.TopicSupportSessions, realtime.SupportUserTopic(session.UserID))

	return session, nil
}

// AcceptSession claims a session for the calling admin.
func (s *Service) AcceptSession(ctx context.Context, sessionID string, admin policy.Identity) (model.SupportSessionItem, error) {
	if !admin.IsAdmin() {
		return model.SupportSessionItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.SupportSessionItem{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}

	firstWins := s.opts.ClaimMode == config.ClaimFirstWins
	session, err := s.repo.ClaimSession(ctx, sessionID, admin.UserID, firstWins)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return model.SupportSessionItem{}, newError(ErrorCodeNotFound, "session not found", err)
		case errors.Is(err, ErrSessionClosed):
			return model.SupportSessionItem{}, newError(ErrorCodeConflict, "session is closed", err)
		case errors.Is(err, ErrAlreadyClaimed):
			return model.SupportSessionItem{}, newError(ErrorCodeConflict, "session already claimed by another admin", err)
		}
		return model.SupportSessionItem{}, newError(ErrorCodeInternal, "failed to accept session", err)
	}

	sessionsClaimed.WithLabelValues(s.opts.ClaimMode).Inc()
	s.log.Info("Support session accepted", "session_id", sessionID, "admin_id", admin.UserID, "mode", s.opts.ClaimMode)
	s.publish(ctx, realtime.TopicSupportSessions, realtime.SupportUserTopic(session.UserID))

	return session, nil
}

// EndSession closes a session. Closing a closed session is a no-op.
func (s *Service) EndSession(ctx context.Context, sessionID string, admin policy.Identity) (model.SupportSessionItem, error) {
	if !admin.IsAdmin() {
		return model.SupportSessionItem{}, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.SupportSessionItem{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}

	session, err := s.repo.CloseSession(ctx, sessionID)
	if errors.Is(err, ErrSessionClosed) {
		return session, nil
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.SupportSessionItem{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return model.SupportSessionItem{}, newError(ErrorCodeInternal, "failed to end session", err)
	}

	sessionsClosed.Inc()
	s.log.Info("Support session closed", "session_id", sessionID, "admin_id", admin.UserID)
	s.publish(ctx, realtime.TopicSupportSessions, realtime.SupportUserTopic(session.UserID))

	return session, nil
}

// SendMessage appends a message and then bumps the session activity. The two
// writes are independent; a subscriber may observe them in either order.
func (s *Service) SendMessage(ctx context.Context, sessionID string, sender policy.Identity, text string) (model.SupportMessageItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.SupportMessageItem{}, newError(ErrorCodeValidation, "message text is required", nil)
	}
	if len([]rune(text)) > maxMessageLength {
		return model.SupportMessageItem{}, newError(ErrorCodeValidation, "message text is too long", nil)
	}

	session, err := s.loadVisible(ctx, sessionID, sender)
	if err != nil {
		return model.SupportMessageItem{}, err
	}

	isAdmin := sender.IsAdmin() && sender.UserID != session.UserID
	senderName := strings.TrimSpace(sender.Name)
	if senderName == "" {
		senderName = sender.Email
	}

	messageID := s.newID()
	message := model.SupportMessageItem{
		PK:         model.SupportMessagePK(session.SessionID, messageID),
		SessionID:  session.SessionID,
		MessageID:  messageID,
		SenderID:   sender.UserID,
		SenderName: senderName,
		Text:       text,
		Timestamp:  model.FormatTime(s.nextTimestamp()),
		IsAdmin:    isAdmin,
	}

	if err := s.repo.AppendMessage(ctx, message); err != nil {
		return model.SupportMessageItem{}, newError(ErrorCodeInternal, "failed to send message", err)
	}
	messagesSent.WithLabelValues(senderLabel(isAdmin)).Inc()
	s.publish(ctx, realtime.SupportMessagesTopic(session.SessionID))

	if err := s.repo.TouchSession(ctx, session.SessionID, message.Timestamp, !isAdmin); err != nil {
		s.log.Warn("Failed to update session activity", "session_id", session.SessionID, "error", err)
	} else {
		s.publish(ctx, realtime.TopicSupportSessions, realtime.SupportUserTopic(session.UserID))
	}

	return message, nil
}

// MarkRead clears the unread counter of the reader's side.
func (s *Service) MarkRead(ctx context.Context, sessionID string, reader policy.Identity) error {
	session, err := s.loadVisible(ctx, sessionID, reader)
	if err != nil {
		return err
	}
	byAdmin := reader.IsAdmin() && reader.UserID != session.UserID
	if err := s.repo.ResetUnread(ctx, session.SessionID, byAdmin); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "session not found", err)
		}
		return newError(ErrorCodeInternal, "failed to mark session read", err)
	}
	s.publish(ctx, realtime.TopicSupportSessions, realtime.SupportUserTopic(session.UserID))
	return nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string, caller policy.Identity) (model.SupportSessionItem, error) {
	return s.loadVisible(ctx, sessionID, caller)
}

// ActiveSession returns the caller's open session, if any.
func (s *Service) ActiveSession(ctx context.Context, caller policy.Identity) (model.SupportSessionItem, bool, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return model.SupportSessionItem{}, false, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	session, ok, err := s.activeSession(ctx, caller.UserID)
	if err != nil {
		return model.SupportSessionItem{}, false, newError(ErrorCodeInternal, "failed to load active session", err)
	}
	return session, ok, nil
}

// ListMessages returns the session's messages, oldest first.
func (s *Service) ListMessages(ctx context.Context, sessionID string, caller policy.Identity) ([]model.SupportMessageItem, error) {
	session, err := s.loadVisible(ctx, sessionID, caller)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, session.SessionID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list messages", err)
	}
	sortMessages(messages)
	return messages, nil
}

// AdminInbox returns every WAITING session plus the ACTIVE sessions the admin
// may see, most recent activity first.
func (s *Service) AdminInbox(ctx context.Context, admin policy.Identity) ([]model.SupportSessionItem, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	sessions, err := s.repo.ListOpenSessions(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list sessions", err)
	}

	visible := make([]model.SupportSessionItem, 0, len(sessions))
	for _, session := range sessions {
		if s.inInbox(session, admin) {
			visible = append(visible, session)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].LastMessageAt > visible[j].LastMessageAt
	})
	return visible, nil
}

func (s *Service) inInbox(session model.SupportSessionItem, admin policy.Identity) bool {
	switch session.Status {
	case model.SupportStatusWaiting:
		return true
	case model.SupportStatusActive:
		return session.AdminID == admin.UserID || s.policy.IsSuperAdmin(admin.Email)
	}
	return false
}

// canAccess reports whether caller may read or write the session: its owner,
// or an admin who can see it in the inbox or who handled it.
func (s *Service) canAccess(session model.SupportSessionItem, caller policy.Identity) bool {
	if caller.UserID != "" && caller.UserID == session.UserID {
		return true
	}
	if !caller.IsAdmin() {
		return false
	}
	if s.inInbox(session, caller) {
		return true
	}
	return session.AdminID == "" || session.AdminID == caller.UserID || s.policy.IsSuperAdmin(caller.Email)
}

func (s *Service) loadVisible(ctx context.Context, sessionID string, caller policy.Identity) (model.SupportSessionItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.SupportSessionItem{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}
	if caller.UserID == "" {
		return model.SupportSessionItem{}, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.SupportSessionItem{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return model.SupportSessionItem{}, newError(ErrorCodeInternal, "failed to load session", err)
	}
	if !s.canAccess(session, caller) {
		return model.SupportSessionItem{}, newError(ErrorCodeForbidden, "session belongs to another conversation", nil)
	}
	return session, nil
}

func (s *Service) activeSession(ctx context.Context, userID string) (model.SupportSessionItem, bool, error) {
	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return model.SupportSessionItem{}, false, err
	}
	var (
		found model.SupportSessionItem
		ok    bool
	)
	for _, session := range sessions {
		if !session.Status.IsOpen() {
			continue
		}
		if !ok || session.CreatedAt > found.CreatedAt {
			found = session
			ok = true
		}
	}
	return found, ok, nil
}

// nextTimestamp never returns a value at or before the previous one, so
// messages sent through this process sort in send order.
func (s *Service) nextTimestamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	ts := s.now().UTC().Truncate(time.Millisecond)
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Millisecond)
	}
	s.lastTS = ts
	return ts
}

func (s *Service) publish(ctx context.Context, topics ...string) {
	if s.bus == nil {
		return
	}
	if err := realtime.PublishAll(ctx, s.bus, topics...); err != nil {
		s.log.Warn("Failed to publish change", "topics", topics, "error", err)
	}
}
