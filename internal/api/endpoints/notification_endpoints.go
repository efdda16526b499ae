package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	announcementsvc "flex-design-backend/internal/service/announcement"
	notificationsvc "flex-design-backend/internal/service/notification"
)

type NotificationEndpoints interface {
	Notifications(http.ResponseWriter, *http.Request) error
	MarkRead(http.ResponseWriter, *http.Request) error
	MarkAllRead(http.ResponseWriter, *http.Request) error
	Feed(http.ResponseWriter, *http.Request) error
	MarkAnnouncementRead(http.ResponseWriter, *http.Request) error
	Announcements(http.ResponseWriter, *http.Request) error
	DeleteAnnouncement(http.ResponseWriter, *http.Request) error
}

type notificationEndpoints struct {
	notifications *notificationsvc.Service
	announcements *announcementsvc.Service
}

func NewNotificationEndpoints(notifications *notificationsvc.Service, announcements *announcementsvc.Service) NotificationEndpoints {
	return &notificationEndpoints{notifications: notifications, announcements: announcements}
}

func (h *notificationEndpoints) Notifications(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *notificationEndpoints) MarkRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkRead,
	})
}

func (h *notificationEndpoints) MarkAllRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkAllRead,
	})
}

func (h *notificationEndpoints) Feed(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleFeed,
	})
}

func (h *notificationEndpoints) MarkAnnouncementRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkAnnouncementRead,
	})
}

func (h *notificationEndpoints) Announcements(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListAnnouncements,
		http.MethodPost: h.handleCreateAnnouncement,
	})
}

func (h *notificationEndpoints) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleDeleteAnnouncement,
	})
}

func (h *notificationEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	items, err := h.notifications.ListForUser(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toNotificationResponses(items))
}

func (h *notificationEndpoints) handleMarkRead(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	notificationID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(r.Context(), identity, notificationID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Marked as read"})
}

func (h *notificationEndpoints) handleMarkAllRead(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

func (h *notificationEndpoints) handleFeed(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	feed, err := h.announcements.Feed(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toFeedResponse(feed))
}

func (h *notificationEndpoints) handleMarkAnnouncementRead(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	announcementID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.announcements.MarkRead(r.Context(), identity, announcementID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Marked as read"})
}

func (h *notificationEndpoints) handleListAnnouncements(w http.ResponseWriter, r *http.Request) error {
	items, err := h.announcements.List(r.Context())
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toFeedResponse(announcementsvc.Feed{Announcements: items}).Announcements)
}

func (h *notificationEndpoints) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.CreateAnnouncementRequest
	if err := decodeJSON(r, &req, "announcement request"); err != nil {
		return err
	}

	item, err := h.announcements.Create(r.Context(), identity, req.Title, req.Message)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toAnnouncementResponse(item, false))
}

func (h *notificationEndpoints) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	announcementID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.announcements.Delete(r.Context(), identity, announcementID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Announcement deleted"})
}

func (h *notificationEndpoints) serviceError(err error) error {
	var notifErr *notificationsvc.Error
	if errors.As(err, &notifErr) {
		return statusError(string(notifErr.Code), notifErr.Message, errorLogFor(notifErr.Message, notifErr.Err, notifErr))
	}
	var annErr *announcementsvc.Error
	if errors.As(err, &annErr) {
		return statusError(string(annErr.Code), annErr.Message, errorLogFor(annErr.Message, annErr.Err, annErr))
	}
	return internalError("notification service", err)
}

func toNotificationResponses(items []model.NotificationItem) []dto.NotificationResponse {
	resp := make([]dto.NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.NotificationResponse{
			NotificationID: item.NotificationID,
			Title:          item.Title,
			Message:        item.Message,
			Type:           string(item.Type),
			IsRead:         item.IsRead,
			CreatedAt:      item.CreatedAt,
		})
	}
	return resp
}

func toAnnouncementResponse(item model.AnnouncementItem, read bool) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		AnnouncementID: item.AnnouncementID,
		Title:          item.Title,
		Message:        item.Message,
		CreatedAt:      item.CreatedAt,
		CreatedBy:      item.CreatedBy,
		IsRead:         read,
	}
}

func toFeedResponse(feed announcementsvc.Feed) dto.AnnouncementFeedResponse {
	read := make(map[string]struct{}, len(feed.ReadIDs))
	for _, id := range feed.ReadIDs {
		read[id] = struct{}{}
	}

	resp := dto.AnnouncementFeedResponse{Announcements: make([]dto.AnnouncementResponse, 0, len(feed.Announcements))}
	for _, item := range feed.Announcements {
		_, isRead := read[item.AnnouncementID]
		if !isRead {
			resp.Unread++
		}
		resp.Announcements = append(resp.Announcements, toAnnouncementResponse(item, isRead))
	}
	return resp
}
