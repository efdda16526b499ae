package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	botsvc "flex-design-backend/internal/service/bot"
	supportsvc "flex-design-backend/internal/service/support"
)

type BotEndpoints interface {
	Menu(http.ResponseWriter, *http.Request) error
	Reply(http.ResponseWriter, *http.Request) error
}

type botEndpoints struct {
	service *botsvc.Service
}

func NewBotEndpoints(service *botsvc.Service) BotEndpoints {
	return &botEndpoints{service: service}
}

func (h *botEndpoints) Menu(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleMenu,
	})
}

func (h *botEndpoints) Reply(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleReply,
	})
}

func (h *botEndpoints) handleMenu(w http.ResponseWriter, r *http.Request) error {
	menu := h.service.Menu(r.URL.Query().Get("lang"))

	options := make([]dto.BotOption, 0, len(menu.Options))
	for _, opt := range menu.Options {
		options = append(options, dto.BotOption{ID: opt.ID, Label: opt.Label})
	}
	return WriteJSON(w, http.StatusOK, dto.BotMenuResponse{
		Language: menu.Language,
		Welcome:  menu.Welcome,
		Options:  options,
	})
}

func (h *botEndpoints) handleReply(w http.ResponseWriter, r *http.Request) error {
	var req dto.BotReplyRequest
	if err := decodeJSON(r, &req, "bot reply request"); err != nil {
		return err
	}

	reply, err := h.service.Reply(r.Context(), optionalIdentity(r), req.Option, req.Language)
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.BotReplyResponse{
		Language:      reply.Language,
		Option:        reply.Option,
		Text:          reply.Text,
		RequiresLogin: reply.RequiresLogin,
	}
	if reply.Session != nil {
		session := toSessionResponse(*reply.Session)
		resp.Session = &session
	}
	return WriteJSON(w, http.StatusOK, resp)
}

// serviceError also unwraps support errors raised by the human handoff.
func (h *botEndpoints) serviceError(err error) error {
	var svcErr *botsvc.Error
	if errors.As(err, &svcErr) {
		var supportErr *supportsvc.Error
		if svcErr.Err != nil && errors.As(svcErr.Err, &supportErr) {
			return statusError(string(supportErr.Code), supportErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
		}
		return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
	}
	return internalError("bot service", err)
}
