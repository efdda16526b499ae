package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	requestsvc "flex-design-backend/internal/service/request"
)

type RequestEndpoints interface {
	// Requests serves the portal: customers list their own and submit new ones.
	Requests(http.ResponseWriter, *http.Request) error
	AllRequests(http.ResponseWriter, *http.Request) error
	UpdateStatus(http.ResponseWriter, *http.Request) error
}

type requestEndpoints struct {
	service *requestsvc.Service
}

func NewRequestEndpoints(service *requestsvc.Service) RequestEndpoints {
	return &requestEndpoints{service: service}
}

func (h *requestEndpoints) Requests(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListOwn,
		http.MethodPost: h.handleCreate,
	})
}

func (h *requestEndpoints) AllRequests(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListAll,
	})
}

func (h *requestEndpoints) UpdateStatus(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleUpdateStatus,
	})
}

func (h *requestEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateRequestRequest
	if err := decodeJSON(r, &req, "design request"); err != nil {
		return err
	}

	item, err := h.service.Create(r.Context(), optionalIdentity(r), requestsvc.CreateParams{
		ClientName:  req.ClientName,
		Email:       req.Email,
		ProjectType: model.ProjectType(strings.ToUpper(strings.TrimSpace(req.ProjectType))),
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toRequestResponse(item))
}

func (h *requestEndpoints) handleListOwn(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	items, err := h.service.ListForUser(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toRequestResponses(items))
}

func (h *requestEndpoints) handleListAll(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	items, err := h.service.ListAll(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toRequestResponses(items))
}

func (h *requestEndpoints) handleUpdateStatus(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	requestID, err := pathID(r)
	if err != nil {
		return err
	}

	var req dto.UpdateRequestStatusRequest
	if err := decodeJSON(r, &req, "status update"); err != nil {
		return err
	}

	status := model.RequestStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	item, err := h.service.UpdateStatus(r.Context(), identity, requestID, status)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toRequestResponse(item))
}

func (h *requestEndpoints) serviceError(err error) error {
	var svcErr *requestsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("request service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toRequestResponse(item model.DesignRequestItem) dto.DesignRequestResponse {
	return dto.DesignRequestResponse{
		RequestID:   item.RequestID,
		UserID:      item.UserID,
		ClientName:  item.ClientName,
		Email:       item.Email,
		ProjectType: string(item.ProjectType),
		Description: item.Description,
		Budget:      item.Budget,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
	}
}

func toRequestResponses(items []model.DesignRequestItem) []dto.DesignRequestResponse {
	resp := make([]dto.DesignRequestResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toRequestResponse(item))
	}
	return resp
}
