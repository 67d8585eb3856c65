package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"surveyforge/internal/export"
	"surveyforge/internal/logger"
	"surveyforge/internal/service"

	"github.com/gorilla/mux"
)

// ResultsHandler serves the admin results dashboard and CSV export
type ResultsHandler struct {
	resultsSvc *service.ResultsService
	log        *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsSvc *service.ResultsService, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{resultsSvc: resultsSvc, log: log}
}

// Results handles GET /v1/surveys/{surveyId}/results
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultsSvc.Results(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Summary handles GET /v1/surveys/{surveyId}/summary
func (h *ResultsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.resultsSvc.Summary(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Export handles GET /v1/surveys/{surveyId}/export.csv
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	filename, err := h.resultsSvc.ExportCSV(r.Context(), mux.Vars(r)["surveyId"], &buf)
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
