package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func SupportPortalRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		supportEndpoints := endpoints.NewSupportEndpoints(s.Backend().Support)
		requireUser := middleware.RequireUser(s.Backend().Tokens)

		mux.HandleFunc(prefix+"/support/sessions", s.MakeHTTPHandleFunc(supportEndpoints.Sessions, requireUser))
		mux.HandleFunc(prefix+"/support/sessions/active", s.MakeHTTPHandleFunc(supportEndpoints.ActiveSession, requireUser))
		mux.HandleFunc(prefix+"/support/sessions/{id}/messages", s.MakeHTTPHandleFunc(supportEndpoints.Messages, requireUser))
		mux.HandleFunc(prefix+"/support/sessions/{id}/read", s.MakeHTTPHandleFunc(supportEndpoints.Read, requireUser))
	}
}

func SupportAdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		supportEndpoints := endpoints.NewSupportEndpoints(s.Backend().Support)
		requireAdmin := middleware.RequireAdmin(s.Backend().Tokens)

		mux.HandleFunc(prefix+"/support/inbox", s.MakeHTTPHandleFunc(supportEndpoints.Inbox, requireAdmin))
		mux.HandleFunc(prefix+"/support/sessions/{id}/accept", s.MakeHTTPHandleFunc(supportEndpoints.Accept, requireAdmin))
		mux.HandleFunc(prefix+"/support/sessions/{id}/end", s.MakeHTTPHandleFunc(supportEndpoints.End, requireAdmin))
		mux.HandleFunc(prefix+"/support/sessions/{id}/messages", s.MakeHTTPHandleFunc(supportEndpoints.Messages, requireAdmin))
		mux.HandleFunc(prefix+"/support/sessions/{id}/read", s.MakeHTTPHandleFunc(supportEndpoints.Read, requireAdmin))
	}
}
