package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
	bannersvc "flex-design-backend/internal/service/banner"
)

// multipart framing allowance on top of the image itself
const uploadOverhead = 1 << 20

type BannerEndpoints interface {
	// ActiveBanners is the public carousel feed.
	ActiveBanners(http.ResponseWriter, *http.Request) error
	Banners(http.ResponseWriter, *http.Request) error
	Upload(http.ResponseWriter, *http.Request) error
	Toggle(http.ResponseWriter, *http.Request) error
	Delete(http.ResponseWriter, *http.Request) error
}

type bannerEndpoints struct {
	service *bannersvc.Service
}

func NewBannerEndpoints(service *bannersvc.Service) BannerEndpoints {
	return &bannerEndpoints{service: service}
}

func (h *bannerEndpoints) ActiveBanners(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return h.list(w, r, true)
		},
	})
}

func (h *bannerEndpoints) Banners(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			return h.list(w, r, false)
		},
		http.MethodPost: h.handleCreate,
	})
}

func (h *bannerEndpoints) Upload(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleUpload,
	})
}

func (h *bannerEndpoints) Toggle(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleToggle,
	})
}

func (h *bannerEndpoints) Delete(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleDelete,
	})
}

func (h *bannerEndpoints) list(w http.ResponseWriter, r *http.Request, activeOnly bool) error {
	items, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		return h.serviceError(err)
	}

	resp := make([]dto.BannerResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toBannerResponse(item))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *bannerEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.CreateBannerRequest
	if err := decodeJSON(r, &req, "banner request"); err != nil {
		return err
	}

	item, err := h.service.Create(r.Context(), identity, req.ImageURL, req.Title)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toBannerResponse(item))
}

func (h *bannerEndpoints) handleUpload(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, bannersvc.MaxImageBytes+uploadOverhead)
	if err := r.ParseMultipartForm(bannersvc.MaxImageBytes + uploadOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &HTTPError{
				StatusCode: http.StatusRequestEntityTooLarge,
				Message:    "Image exceeds the upload limit",
				ErrorLog:   fmt.Errorf("parse banner upload: %w", err),
			}
		}
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid multipart payload",
			ErrorLog:   fmt.Errorf("parse banner upload: %w", err),
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing file",
			ErrorLog:   fmt.Errorf("read banner upload file: %w", err),
		}
	}
	defer file.Close()

	url, err := h.service.Upload(r.Context(), identity, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.UploadResponse{URL: url})
}

func (h *bannerEndpoints) handleToggle(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	bannerID, err := pathID(r)
	if err != nil {
		return err
	}

	item, err := h.service.Toggle(r.Context(), identity, bannerID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toBannerResponse(item))
}

func (h *bannerEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}
	bannerID, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.service.Delete(r.Context(), identity, bannerID); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Banner deleted"})
}

func (h *bannerEndpoints) serviceError(err error) error {
	var svcErr *bannersvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("banner service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toBannerResponse(item model.BannerItem) dto.BannerResponse {
	return dto.BannerResponse{
		BannerID:  item.BannerID,
		ImageURL:  item.ImageURL,
		Title:     item.Title,
		IsActive:  item.IsActive,
		CreatedAt: item.CreatedAt,
	}
}
