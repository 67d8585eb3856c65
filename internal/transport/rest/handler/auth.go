package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"surveyforge/internal/apperror"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/service"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	log     *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Warn(r.Context(), "admin login rejected", map[string]interface{}{"username": req.Username})
		writeError(w, http.StatusUnauthorized, apperror.CodeUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeAppError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string        `json:"error"`
	Code    apperror.Code `json:"code"`
	Details []string      `json:"details,omitempty"`
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code apperror.Code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeAppError maps err onto its status code. Unclassified errors are logged
// and reported without their cause.
func writeAppError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		log.Error(r.Context(), "request failed", err, map[string]interface{}{"path": r.URL.Path})
		writeError(w, http.StatusInternalServerError, apperror.CodeInternal, "internal server error")
		return
	}

	status := apperror.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError || appErr.Code == apperror.CodePermissionDenied {
		log.Error(r.Context(), "request failed", err, map[string]interface{}{"path": r.URL.Path, "code": string(appErr.Code)})
	}
	writeJSON(w, status, errorResponse{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details})
}

// decodeJSON reads and validates a request body, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fe.Field()+": "+fe.Tag())
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "invalid request body",
				Code:    apperror.CodeInvalidInput,
				Details: details,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid request body")
		return false
	}
	return true
}
