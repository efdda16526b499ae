package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func NotificationPortalRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		notificationEndpoints := endpoints.NewNotificationEndpoints(b.Notifications, b.Announcements)
		requireUser := middleware.RequireUser(b.Tokens)

		mux.HandleFunc(prefix+"/notifications", s.MakeHTTPHandleFunc(notificationEndpoints.Notifications, requireUser))
		mux.HandleFunc(prefix+"/notifications/read-all", s.MakeHTTPHandleFunc(notificationEndpoints.MarkAllRead, requireUser))
		mux.HandleFunc(prefix+"/notifications/{id}/read", s.MakeHTTPHandleFunc(notificationEndpoints.MarkRead, requireUser))
		mux.HandleFunc(prefix+"/announcements", s.MakeHTTPHandleFunc(notificationEndpoints.Feed, requireUser))
		mux.HandleFunc(prefix+"/announcements/{id}/read", s.MakeHTTPHandleFunc(notificationEndpoints.MarkAnnouncementRead, requireUser))
	}
}

func AnnouncementAdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		notificationEndpoints := endpoints.NewNotificationEndpoints(b.Notifications, b.Announcements)
		requireAdmin := middleware.RequireAdmin(b.Tokens)

		mux.HandleFunc(prefix+"/announcements", s.MakeHTTPHandleFunc(notificationEndpoints.Announcements, requireAdmin))
		mux.HandleFunc(prefix+"/announcements/{id}", s.MakeHTTPHandleFunc(notificationEndpoints.DeleteAnnouncement, requireAdmin))
	}
}
