package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func PublicContentRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		bannerEndpoints := endpoints.NewBannerEndpoints(b.Banners)
		contactEndpoints := endpoints.NewContactEndpoints(b.Contact)
		visitorEndpoints := endpoints.NewVisitorEndpoints(b.Visitors)

		mux.HandleFunc(prefix+"/banners", s.MakeHTTPHandleFunc(bannerEndpoints.ActiveBanners))
		mux.HandleFunc(prefix+"/contact", s.MakeHTTPHandleFunc(contactEndpoints.Submit))
		mux.HandleFunc(prefix+"/visitors", s.MakeHTTPHandleFunc(visitorEndpoints.Track, middleware.OptionalIdentity(b.Tokens)))
	}
}

func ContentAdminRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		b := s.Backend()
		bannerEndpoints := endpoints.NewBannerEndpoints(b.Banners)
		contactEndpoints := endpoints.NewContactEndpoints(b.Contact)
		visitorEndpoints := endpoints.NewVisitorEndpoints(b.Visitors)
		requireAdmin := middleware.RequireAdmin(b.Tokens)

		mux.HandleFunc(prefix+"/messages", s.MakeHTTPHandleFunc(contactEndpoints.Messages, requireAdmin))
		mux.HandleFunc(prefix+"/messages/{id}", s.MakeHTTPHandleFunc(contactEndpoints.Delete, requireAdmin))
		mux.HandleFunc(prefix+"/messages/{id}/read", s.MakeHTTPHandleFunc(contactEndpoints.MarkRead, requireAdmin))

		mux.HandleFunc(prefix+"/banners", s.MakeHTTPHandleFunc(bannerEndpoints.Banners, requireAdmin))
		mux.HandleFunc(prefix+"/banners/upload", s.MakeHTTPHandleFunc(bannerEndpoints.Upload, requireAdmin))
		mux.HandleFunc(prefix+"/banners/{id}", s.MakeHTTPHandleFunc(bannerEndpoints.Delete, requireAdmin))
		mux.HandleFunc(prefix+"/banners/{id}/toggle", s.MakeHTTPHandleFunc(bannerEndpoints.Toggle, requireAdmin))

		mux.HandleFunc(prefix+"/visitors", s.MakeHTTPHandleFunc(visitorEndpoints.Visitors, requireAdmin))
	}
}
