package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Backend().Auth)
		mux.HandleFunc(prefix+"/auth/register", s.MakeHTTPHandleFunc(authEndpoints.Register))
		mux.HandleFunc(prefix+"/auth/login", s.MakeHTTPHandleFunc(authEndpoints.Login))
		mux.HandleFunc(prefix+"/auth/refresh", s.MakeHTTPHandleFunc(authEndpoints.Refresh))
		mux.HandleFunc(prefix+"/auth/logout", s.MakeHTTPHandleFunc(authEndpoints.Logout))
	}
}

func ProfileRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Backend().Auth)
		requireUser := middleware.RequireUser(s.Backend().Tokens)
		mux.HandleFunc(prefix+"/me", s.MakeHTTPHandleFunc(authEndpoints.Me, requireUser))
		mux.HandleFunc(prefix+"/me/preferences", s.MakeHTTPHandleFunc(authEndpoints.Preferences, requireUser))
	}
}

func UserAdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Backend().Auth)
		requireAdmin := middleware.RequireAdmin(s.Backend().Tokens)
		mux.HandleFunc(prefix+"/users", s.MakeHTTPHandleFunc(authEndpoints.Users, requireAdmin))
		mux.HandleFunc(prefix+"/users/{id}", s.MakeHTTPHandleFunc(authEndpoints.DeleteUser, requireAdmin))
		mux.HandleFunc(prefix+"/users/{id}/ban", s.MakeHTTPHandleFunc(authEndpoints.BanUser, requireAdmin))
	}
}
