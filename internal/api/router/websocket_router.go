package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/websocket"
)

// WebsocketRoutes authenticate from the ?token= query parameter inside the
// endpoints, so no auth middleware is chained here.
func WebsocketRoutes(prefix string, handler *websocket.Handler) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		wsEndpoints := endpoints.NewWebsocketEndpoints(handler, b.Tokens, b.Support, b.Notifications, b.Announcements)

		mux.HandleFunc(prefix+"/support/active", s.MakeHTTPHandleFunc(wsEndpoints.ActiveSession))
		mux.HandleFunc(prefix+"/support/sessions/{id}/messages", s.MakeHTTPHandleFunc(wsEndpoints.Messages))
		mux.HandleFunc(prefix+"/support/inbox", s.MakeHTTPHandleFunc(wsEndpoints.Inbox))
		mux.HandleFunc(prefix+"/notifications", s.MakeHTTPHandleFunc(wsEndpoints.Notifications))
		mux.HandleFunc(prefix+"/announcements", s.MakeHTTPHandleFunc(wsEndpoints.Announcements))
	}
}
