package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"flex-design-backend/internal/api/middleware"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
	"flex-design-backend/internal/realtime"
	announcementsvc "flex-design-backend/internal/service/announcement"
	notificationsvc "flex-design-backend/internal/service/notification"
	supportsvc "flex-design-backend/internal/service/support"
	"flex-design-backend/internal/websocket"
)

// Stream names double as the envelope type of their snapshots.
const (
	streamActiveSession = "support_active"
	streamMessages      = "support_messages"
	streamInbox         = "support_inbox"
	streamNotifications = "notifications"
	streamAnnouncements = "announcements"
)

type WebsocketEndpoints interface {
	ActiveSession(http.ResponseWriter, *http.Request) error
	Messages(http.ResponseWriter, *http.Request) error
	Inbox(http.ResponseWriter, *http.Request) error
	Notifications(http.ResponseWriter, *http.Request) error
	Announcements(http.ResponseWriter, *http.Request) error
}

type websocketEndpoints struct {
	handler       *websocket.Handler
	tokens        middleware.TokenParser
	support       *supportsvc.Service
	notifications *notificationsvc.Service
	announcements *announcementsvc.Service
}

func NewWebsocketEndpoints(
	handler *websocket.Handler,
	tokens middleware.TokenParser,
	support *supportsvc.Service,
	notifications *notificationsvc.Service,
	announcements *announcementsvc.Service,
) WebsocketEndpoints {
	return &websocketEndpoints{
		handler:       handler,
		tokens:        tokens,
		support:       support,
		notifications: notifications,
		announcements: announcements,
	}
}

func (h *websocketEndpoints) ActiveSession(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r, false)
	if err != nil {
		return err
	}

	h.handler.Stream(w, r, streamActiveSession, identity.UserID, func(ctx context.Context, send websocket.SendFunc) (realtime.CancelFunc, error) {
		return h.support.SubscribeActiveSession(ctx, identity, func(session *model.SupportSessionItem) {
			if session == nil {
				send(streamActiveSession, nil)
				return
			}
			send(streamActiveSession, toSessionResponse(*session))
		})
	})
	return nil
}

func (h *websocketEndpoints) Messages(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r, false)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	h.handler.Stream(w, r, streamMessages, identity.UserID, func(ctx context.Context, send websocket.SendFunc) (realtime.CancelFunc, error) {
		return h.support.SubscribeMessages(ctx, sessionID, identity, func(messages []model.SupportMessageItem) {
			send(streamMessages, toMessageResponses(messages))
		})
	})
	return nil
}

func (h *websocketEndpoints) Inbox(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r, true)
	if err != nil {
		return err
	}

	h.handler.Stream(w, r, streamInbox, identity.UserID, func(ctx context.Context, send websocket.SendFunc) (realtime.CancelFunc, error) {
		return h.support.SubscribeAdminInbox(ctx, identity, func(sessions []model.SupportSessionItem) {
			send(streamInbox, toSessionResponses(sessions))
		})
	})
	return nil
}

func (h *websocketEndpoints) Notifications(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r, false)
	if err != nil {
		return err
	}

	h.handler.Stream(w, r, streamNotifications, identity.UserID, func(ctx context.Context, send websocket.SendFunc) (realtime.CancelFunc, error) {
		return h.notifications.Subscribe(ctx, identity, func(items []model.NotificationItem) {
			send(streamNotifications, toNotificationResponses(items))
		})
	})
	return nil
}

func (h *websocketEndpoints) Announcements(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r, false)
	if err != nil {
		return err
	}

	h.handler.Stream(w, r, streamAnnouncements, identity.UserID, func(ctx context.Context, send websocket.SendFunc) (realtime.CancelFunc, error) {
		return h.announcements.Subscribe(ctx, identity, func(feed announcementsvc.Feed) {
			send(streamAnnouncements, toFeedResponse(feed))
		})
	})
	return nil
}

// identity reads the access token from ?token= since browsers cannot set
// headers on a websocket handshake. A bearer header is accepted as well.
func (h *websocketEndpoints) identity(r *http.Request, adminOnly bool) (policy.Identity, error) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		return policy.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Missing token",
			ErrorLog:   fmt.Errorf("websocket %s missing token", r.URL.Path),
		}
	}

	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		return policy.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Unauthorized",
			ErrorLog:   fmt.Errorf("websocket %s: %w", r.URL.Path, err),
		}
	}

	identity := middleware.IdentityFromClaims(claims)
	if adminOnly && !identity.IsAdmin() {
		return policy.Identity{}, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Forbidden",
			ErrorLog:   fmt.Errorf("websocket %s requires admin", r.URL.Path),
		}
	}
	return identity, nil
}
