package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	visitorsvc "flex-design-backend/internal/service/visitor"
)

type VisitorEndpoints interface {
	Track(http.ResponseWriter, *http.Request) error
	Visitors(http.ResponseWriter, *http.Request) error
}

type visitorEndpoints struct {
	service *visitorsvc.Service
}

func NewVisitorEndpoints(service *visitorsvc.Service) VisitorEndpoints {
	return &visitorEndpoints{service: service}
}

func (h *visitorEndpoints) Track(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleTrack,
	})
}

func (h *visitorEndpoints) Visitors(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *visitorEndpoints) handleTrack(w http.ResponseWriter, r *http.Request) error {
	var req dto.TrackVisitRequest
	if err := decodeJSON(r, &req, "visit"); err != nil {
		return err
	}

	item, err := h.service.Track(r.Context(), req.DeviceID, r.UserAgent(), optionalIdentity(r))
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toVisitorResponse(item))
}

func (h *visitorEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	items, err := h.service.List(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	resp := make([]dto.VisitorResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toVisitorResponse(item))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *visitorEndpoints) serviceError(err error) error {
	var svcErr *visitorsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("visitor service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toVisitorResponse(item model.VisitorItem) dto.VisitorResponse {
	return dto.VisitorResponse{
		DeviceID:     item.DeviceID,
		UserAgent:    item.UserAgent,
		UserID:       item.UserID,
		FirstVisit:   item.FirstVisit,
		LastVisit:    item.LastVisit,
		VisitCount:   item.VisitCount,
		IsRegistered: item.IsRegistered,
	}
}
