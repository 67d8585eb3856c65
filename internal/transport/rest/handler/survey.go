package handler

import (
	"net/http"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/service"

	"github.com/gorilla/mux"
)

// SurveyHandler handles admin survey endpoints
type SurveyHandler struct {
	surveySvc     *service.SurveyService
	publicBaseURL string
	log           *logger.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService, publicBaseURL string, log *logger.Logger) *SurveyHandler {
	return &SurveyHandler{
		surveySvc:     surveySvc,
		publicBaseURL: publicBaseURL,
		log:           log,
	}
}

// ImportQuestionsRequest is the request body for bulk question import
type ImportQuestionsRequest struct {
	Text    string `json:"text" validate:"required"`
	Replace bool   `json:"replace"`
}

// Create handles POST /v1/surveys. An empty body creates the default survey.
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	survey := service.NewDefaultSurvey()
	if r.ContentLength != 0 {
		survey = &model.Survey{}
		if !decodeJSON(w, r, survey) {
			return
		}
	}

	if _, err := h.surveySvc.Create(r.Context(), survey); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.List(r.Context())
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.Get(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var survey model.Survey
	if !decodeJSON(w, r, &survey) {
		return
	}
	survey.ID = mux.Vars(r)["surveyId"]

	if err := h.surveySvc.Update(r.Context(), &survey); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, &survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.Delete(r.Context(), mux.Vars(r)["surveyId"]); err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Duplicate handles POST /v1/surveys/{surveyId}/duplicate
func (h *SurveyHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := h.surveySvc.Duplicate(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ImportQuestions handles POST /v1/surveys/{surveyId}/questions/import
func (h *SurveyHandler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	var req ImportQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	survey, err := h.surveySvc.ImportQuestions(r.Context(), mux.Vars(r)["surveyId"], req.Text, req.Replace)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Share handles GET /v1/surveys/{surveyId}/share
func (h *SurveyHandler) Share(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.Get(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, service.BuildShareLinks(h.publicBaseURL, survey.ID))
}
