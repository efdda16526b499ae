package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func SystemRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		systemEndpoints := endpoints.NewSystemEndpoints(b.System, b.Site.StatsDisplay)
		requireAdmin := middleware.RequireAdmin(b.Tokens)

		mux.HandleFunc(prefix+"/stats", s.MakeHTTPHandleFunc(systemEndpoints.Stats, requireAdmin))
		mux.HandleFunc(prefix+"/system/wipe", s.MakeHTTPHandleFunc(systemEndpoints.Wipe, requireAdmin))
	}
}
