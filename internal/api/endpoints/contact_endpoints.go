package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	contactsvc "flex-design-backend/internal/service/contact"
)

type ContactEndpoints interface {
	Submit(http.ResponseWriter, *http.Request) error
	Messages(http.ResponseWriter, *http.Request) error
	MarkRead(http.ResponseWriter, *http.Request) error
	Delete(http.ResponseWriter, *http.Request) error
}

type contactEndpoints struct {
	service *contactsvc.Service
}

func NewContactEndpoints(service *contactsvc.Service) ContactEndpoints {
	return &contactEndpoints{service: service}
}

func (h *contactEndpoints) Submit(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleSubmit,
	})
}

func (h *contactEndpoints) Messages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *contactEndpoints) MarkRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkRead,
	})
}

func (h *contactEndpoints) Delete(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleDelete,
	})
}

func (h *contactEndpoints) handleSubmit(w http.ResponseWriter, r *http.Request) error {
	var req dto.ContactRequest
	if err := decodeJSON(r, &req, "contact request"); err != nil {
		return err
	}

	item, err := h.service.Create(r.Context(), req.Name, req.Phone, req.Text)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toContactResponse(item))
}

func (h *contactEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	items, err := h.service.List(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	resp := make([]dto.ContactMessageResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toContactResponse(item))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *contactEndpoints) handleMarkRead(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	messageID, err := pathID(r)
	if err != nil {
		return err
	}

	item, err := h.service.MarkRead(r.Context(), identity, messageID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toContactResponse(item))
}

func (h *contactEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	messageID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.service.Delete(r.Context(), identity, messageID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Message deleted"})
}

func (h *contactEndpoints) serviceError(err error) error {
	var svcErr *contactsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("contact service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toContactResponse(item model.ContactMessageItem) dto.ContactMessageResponse {
	return dto.ContactMessageResponse{
		MessageID: item.MessageID,
		Name:      item.Name,
		Phone:     item.Phone,
		Text:      item.Text,
		Date:      item.Date,
		Read:      item.Read,
	}
}
