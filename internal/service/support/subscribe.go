package support

import (
	"context"
	"errors"

	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"
)

// SubscribeActiveSession delivers the caller's open session, or nil when there
// is none, now and after every change to the caller's sessions.
func (s *Service) SubscribeActiveSession(ctx context.Context, caller policy.Identity, fn func(*model.SupportSessionItem)) (realtime.CancelFunc, error) {
	if caller.UserID == "" {
		return nil, newError(ErrorCodeUnauthorized, "authentication required", nil)
	}
	if s.bus == nil {
		return nil, newError(ErrorCodeInternal, "realtime bus not configured", nil)
	}

	return realtime.Watch(ctx, s.bus, []string{realtime.SupportUserTopic(caller.UserID), realtime.TopicSystemReset}, func(ctx context.Context) {
		session, ok, err := s.activeSession(ctx, caller.UserID)
		if err != nil {
			s.log.Warn("Active session refresh failed", "user_id", caller.UserID, "error", err)
			return
		}
		if !ok {
			fn(nil)
			return
		}
		fn(&session)
	})
}

// SubscribeMessages delivers the full ordered message list on every append.
// Visibility is re-checked on each refresh: an admin who loses the session to
// another admin's claim stops receiving it. A deleted session yields an empty
// list.
func (s *Service) SubscribeMessages(ctx context.Context, sessionID string, caller policy.Identity, fn func([]model.SupportMessageItem)) (realtime.CancelFunc, error) {
	session, err := s.loadVisible(ctx, sessionID, caller)
	if err != nil {
		return nil, err
	}
	if s.bus == nil {
		return nil, newError(ErrorCodeInternal, "realtime bus not configured", nil)
	}

	topics := []string{realtime.SupportMessagesTopic(session.SessionID), realtime.TopicSystemReset}
	return realtime.Watch(ctx, s.bus, topics, func(ctx context.Context) {
		current, err := s.repo.GetSession(ctx, session.SessionID)
		if errors.Is(err, ErrNotFound) {
			fn([]model.SupportMessageItem{})
			return
		}
		if err != nil {
			s.log.Warn("Message refresh failed", "session_id", session.SessionID, "error", err)
			return
		}
		if !s.canAccess(current, caller) {
			s.log.Debug("Message stream no longer visible", "session_id", session.SessionID, "user_id", caller.UserID)
			return
		}

		messages, err := s.repo.ListMessages(ctx, session.SessionID)
		if err != nil {
			s.log.Warn("Message refresh failed", "session_id", session.SessionID, "error", err)
			return
		}
		sortMessages(messages)
		fn(messages)
	})
}

// SubscribeAdminInbox delivers the admin's inbox after every session change.
func (s *Service) SubscribeAdminInbox(ctx context.Context, admin policy.Identity, fn func([]model.SupportSessionItem)) (realtime.CancelFunc, error) {
	if !admin.IsAdmin() {
		return nil, newError(ErrorCodeForbidden, "admin role required", nil)
	}
	if s.bus == nil {
		return nil, newError(ErrorCodeInternal, "realtime bus not configured", nil)
	}

	return realtime.Watch(ctx, s.bus, []string{realtime.TopicSupportSessions, realtime.TopicSystemReset}, func(ctx context.Context) {
		sessions, err := s.AdminInbox(ctx, admin)
		if err != nil {
			s.log.Warn("Inbox refresh failed", "admin_id", admin.UserID, "error", err)
			return
		}
		fn(sessions)
	})
}
