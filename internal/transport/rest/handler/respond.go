package handler

import (
	"net/http"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/service"
	"surveyforge/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// RespondHandler serves the public respondent flow
type RespondHandler struct {
	respondentSvc *service.RespondentService
	submissionSvc *service.SubmissionService
	log           *logger.Logger
}

// NewRespondHandler creates a new respondent handler
func NewRespondHandler(respondentSvc *service.RespondentService, submissionSvc *service.SubmissionService, log *logger.Logger) *RespondHandler {
	return &RespondHandler{
		respondentSvc: respondentSvc,
		submissionSvc: submissionSvc,
		log:           log,
	}
}

// AccessRequest is the request body of the email gate
type AccessRequest struct {
	Email    string `json:"email" validate:"max=320"`
	ClientID string `json:"clientId" validate:"max=128"`
}

// SubmitRequest is the request body of a submission
type SubmitRequest struct {
	Answers model.AnswerMap `json:"answers"`
}

// SubmitResponse is returned after a successful submission
type SubmitResponse struct {
	ID              string         `json:"id"`
	ThankYouMessage model.RichText `json:"thankYouMessage,omitempty"`
}

// View handles GET /v1/public/surveys/{surveyId}
func (h *RespondHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.respondentSvc.View(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Access handles POST /v1/public/surveys/{surveyId}/access
func (h *RespondHandler) Access(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	surveyID := mux.Vars(r)["surveyId"]
	if req.ClientID == "" {
		req.ClientID = middleware.GetRespondent(r.Context(), surveyID).ClientID
	}

	result, err := h.respondentSvc.Unlock(r.Context(), surveyID, req.Email, req.ClientID)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Form handles GET /v1/public/surveys/{surveyId}/form
func (h *RespondHandler) Form(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	result, err := h.respondentSvc.OpenForm(r.Context(), surveyID, middleware.GetRespondent(r.Context(), surveyID))
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Submit handles POST /v1/public/surveys/{surveyId}/responses
func (h *RespondHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	surveyID := mux.Vars(r)["surveyId"]

	id, err := h.submissionSvc.Submit(r.Context(), surveyID, req.Answers, middleware.GetRespondent(r.Context(), surveyID))
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	resp := SubmitResponse{ID: id}
	if view, err := h.respondentSvc.View(r.Context(), surveyID); err == nil {
		resp.ThankYouMessage = view.ThankYouMessage
	}
	writeJSON(w, http.StatusCreated, resp)
}
