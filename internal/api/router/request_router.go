package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func RequestPortalRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		requestEndpoints := endpoints.NewRequestEndpoints(s.Backend().Requests)
		mux.HandleFunc(prefix+"/requests", s.MakeHTTPHandleFunc(requestEndpoints.Requests, middleware.RequireUser(s.Backend().Tokens)))
	}
}

func RequestAdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		requestEndpoints := endpoints.NewRequestEndpoints(s.Backend().Requests)
		requireAdmin := middleware.RequireAdmin(s.Backend().Tokens)
		mux.HandleFunc(prefix+"/requests", s.MakeHTTPHandleFunc(requestEndpoints.AllRequests, requireAdmin))
		mux.HandleFunc(prefix+"/requests/{id}", s.MakeHTTPHandleFunc(requestEndpoints.UpdateStatus, requireAdmin))
	}
}
