package router

import (
	"net/http"

	"flex-design-backend/internal/api"
	"flex-design-backend/internal/api/endpoints"
	"flex-design-backend/internal/api/middleware"
)

func BotRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		botEndpoints := endpoints.NewBotEndpoints(s.Backend().Bot)
		mux.HandleFunc(prefix+"/bot/menu", s.MakeHTTPHandleFunc(botEndpoints.Menu))
		// Anonymous visitors may use the bot; a token only matters for the human handoff.
		mux.HandleFunc(prefix+"/bot/reply", s.MakeHTTPHandleFunc(botEndpoints.Reply, middleware.OptionalIdentity(s.Backend().Tokens)))
	}
}
