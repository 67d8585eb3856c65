package handler

import (
	"net/http"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/service"

	"github.com/gorilla/mux"
)

// ThemeHandler handles the saved theme library
type ThemeHandler struct {
	themeSvc *service.ThemeService
	log      *logger.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themeSvc *service.ThemeService, log *logger.Logger) *ThemeHandler {
	return &ThemeHandler{themeSvc: themeSvc, log: log}
}

// CreateThemeRequest is the request body for saving a theme
type CreateThemeRequest struct {
	Name   string            `json:"name" validate:"required,max=80"`
	Config model.ThemeConfig `json:"config"`
}

// Create handles POST /v1/themes
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	theme := &model.SavedTheme{Name: req.Name, Config: req.Config}
	if _, err := h.themeSvc.Create(r.Context(), theme); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

// List handles GET /v1/themes
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themeSvc.List(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

// Delete handles DELETE /v1/themes/{themeId}
func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.themeSvc.Delete(r.Context(), mux.Vars(r)["themeId"]); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
