package endpoints

import (
	"errors"
	"net/http"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/dto"
	systemsvc "flex-design-backend/internal/service/system"
)

type SystemEndpoints interface {
	Stats(http.ResponseWriter, *http.Request) error
	Wipe(http.ResponseWriter, *http.Request) error
}

type systemEndpoints struct {
	service *systemsvc.Service
	display config.StatsDisplay
}

func NewSystemEndpoints(service *systemsvc.Service, display config.StatsDisplay) SystemEndpoints {
	return &systemEndpoints{service: service, display: display}
}

func (h *systemEndpoints) Stats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleStats,
	})
}

func (h *systemEndpoints) Wipe(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleWipe,
	})
}

func (h *systemEndpoints) handleStats(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}

	byStatus := make(map[string]int, len(stats.RequestsByStatus))
	for status, n := range stats.RequestsByStatus {
		byStatus[string(status)] = n
	}
	actual := dto.DashboardStats{
		Users:               stats.Users,
		Requests:            stats.Requests,
		RequestsByStatus:    byStatus,
		ContactMessages:     stats.ContactMessages,
		UnreadMessages:      stats.UnreadMessages,
		ActiveBanners:       stats.ActiveBanners,
		OpenSupportSessions: stats.OpenSupportSessions,
		Visitors:            stats.Visitors,
	}
	return WriteJSON(w, http.StatusOK, dto.NewStatsResponse(actual, h.display))
}

func (h *systemEndpoints) handleWipe(w http.ResponseWriter, r *http.Request) error {
	identity, err := requireIdentity(r)
	if err != nil {
		return err
	}

	var req dto.WipeRequest
	if err := decodeJSON(r, &req, "wipe request"); err != nil {
		return err
	}

	report, err := h.service.Wipe(r.Context(), identity, req.Confirm, req.ConfirmAgain)
	if err != nil && len(report.Tables) == 0 {
		return h.serviceError(err)
	}

	// A partial wipe still reports what was deleted so it can be re-run.
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	return WriteJSON(w, status, toWipeResponse(report))
}

func (h *systemEndpoints) serviceError(err error) error {
	var svcErr *systemsvc.Error
	if !errors.As(err, &svcErr) {
		return internalError("system service", err)
	}
	return statusError(string(svcErr.Code), svcErr.Message, errorLogFor(svcErr.Message, svcErr.Err, svcErr))
}

func toWipeResponse(report systemsvc.WipeReport) dto.WipeResponse {
	resp := dto.WipeResponse{
		Deleted: report.Deleted(),
		Tables:  make([]dto.WipeTableResult, 0, len(report.Tables)),
	}
	for _, t := range report.Tables {
		result := dto.WipeTableResult{Table: t.Table, Deleted: t.Deleted}
		if t.Err != nil {
			result.Error = t.Err.Error()
		}
		resp.Tables = append(resp.Tables, result)
	}
	return resp
}
