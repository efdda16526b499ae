package endpoints

import (
	"net/http"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/dto"
	"flex-design-backend/internal/model"
)

type UtilsEndpoints interface {
	HelloWorld(http.ResponseWriter, *http.Request) error
	Health(http.ResponseWriter, *http.Request) error
	Site(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct {
	site *config.Site
}

func NewUtilsEndpoints(site *config.Site) UtilsEndpoints {
	return &utilsEndpoints{site: site}
}

func (h *utilsEndpoints) HelloWorld(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, map[string]string{"message": "Hello world"})
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *utilsEndpoints) Site(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSite,
	})
}

func (h *utilsEndpoints) handleSite(w http.ResponseWriter, r *http.Request) error {
	projectTypes := make([]string, 0, len(model.ProjectTypes))
	for _, p := range model.ProjectTypes {
		projectTypes = append(projectTypes, string(p))
	}
	return WriteJSON(w, http.StatusOK, dto.SiteResponse{
		DefaultLanguage: h.site.DefaultLanguage,
		Languages:       h.site.Languages,
		DefaultTheme:    h.site.DefaultTheme,
		Themes:          h.site.Themes,
		ProjectTypes:    projectTypes,
	})
}
