package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	supportsvc "flex-design-backend/internal/service/support"
)

type SupportEndpoints interface {
	Sessions(http.ResponseWriter, *http.Request) error
	ActiveSession(http.ResponseWriter, *http.Request) error
	Messages(http.ResponseWriter, *http.Request) error
	Read(http.ResponseWriter, *http.Request) error
	Inbox(http.ResponseWriter, *http.Request) error
	Accept(http.ResponseWriter, *http.Request) error
	End(http.ResponseWriter, *http.Request) error
}

type supportEndpoints struct {
	service *supportsvc.Service
}

func NewSupportEndpoints(service *supportsvc.Service) SupportEndpoints {
	return &supportEndpoints{service: service}
}

func (h *supportEndpoints) Sessions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreate,
	})
}

func (h *supportEndpoints) ActiveSession(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleActive,
	})
}

func (h *supportEndpoints) Messages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListMessages,
		http.MethodPost: h.handleSend,
	})
}

func (h *supportEndpoints) Read(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRead,
	})
}

func (h *supportEndpoints) Inbox(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleInbox,
	})
}

func (h *supportEndpoints) Accept(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleAccept,
	})
}

func (h *supportEndpoints) End(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleEnd,
	})
}

func (h *supportEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	session, err := h.service.CreateSession(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *supportEndpoints) handleActive(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	session, ok, err := h.service.ActiveSession(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.ActiveSessionResponse{}
	if ok {
		s := toSessionResponse(session)
		resp.Session = &s
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *supportEndpoints) handleListMessages(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	messages, err := h.service.ListMessages(r.Context(), sessionID, identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (h *supportEndpoints) handleSend(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req, "send message request"); err != nil {
		return err
	}

	message, err := h.service.SendMessage(r.Context(), sessionID, identity, req.Text)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (h *supportEndpoints) handleRead(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(r.Context(), sessionID, identity); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Marked as read"})
}

func (h *supportEndpoints) handleInbox(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	sessions, err := h.service.AdminInbox(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponses(sessions))
}

func (h *supportEndpoints) handleAccept(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	session, err := h.service.AcceptSession(r.Context(), sessionID, identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *supportEndpoints) handleEnd(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	sessionID, err := pathID(r)
	if err != nil {
		return err
	}

	session, err := h.service.EndSession(r.Context(), sessionID, identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *supportEndpoints) serviceError(err error) error {
	var svcErr *supportsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("support service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toSessionResponse(session model.SupportSessionItem) dto.SupportSessionResponse {
	return dto.SupportSessionResponse{
		SessionID:     session.SessionID,
		UserID:        session.UserID,
		UserName:      session.UserName,
		AdminID:       session.AdminID,
		Status:        string(session.Status),
		CreatedAt:     session.CreatedAt,
		LastMessageAt: session.LastMessageAt,
		UnreadByUser:  session.UnreadByUser,
		UnreadByAdmin: session.UnreadByAdmin,
	}
}

func toSessionResponses(sessions []model.SupportSessionItem) []dto.SupportSessionResponse {
	resp := make([]dto.SupportSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, toSessionResponse(session))
	}
	return resp
}

func toMessageResponse(message model.SupportMessageItem) dto.SupportMessageResponse {
	return dto.SupportMessageResponse{
		MessageID:  message.MessageID,
		SessionID:  message.SessionID,
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Text:       message.Text,
		Timestamp:  message.Timestamp,
		IsAdmin:    message.IsAdmin,
	}
}

func toMessageResponses(messages []model.SupportMessageItem) []dto.SupportMessageResponse {
	resp := make([]dto.SupportMessageResponse, 0, len(messages))
	for _, message := range messages {
		resp = append(resp, toMessageResponse(message))
	}
	return resp
}
