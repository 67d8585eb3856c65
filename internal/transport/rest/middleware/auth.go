package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"surveyforge/internal/model"
	"surveyforge/internal/service"
)

type contextKey string

const (
	AdminIDKey    contextKey = "adminId"
	RespondentKey contextKey = "respondent"
)

// ClientIDHeader carries the browser token of anonymous respondents
const ClientIDHeader = "X-Client-ID"

// RespondentSession is what the respondent token (or client header) proves
type RespondentSession struct {
	SurveyID   string
	Respondent model.Respondent
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdmin validates the admin JWT from the Authorization header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		claims, err := m.authSvc.ValidateAdminToken(token)
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalRespondent reads the respondent token when present. Requests
// without one pass through with only the client header recorded; a token
// that does not validate is rejected.
func (m *AuthMiddleware) OptionalRespondent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := RespondentSession{
			Respondent: model.Respondent{ClientID: strings.TrimSpace(r.Header.Get(ClientIDHeader))},
		}

		if token := extractBearerToken(r); token != "" {
			claims, err := m.authSvc.ValidateRespondentToken(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			session.SurveyID = claims.SurveyID
			session.Respondent.Email = claims.Email
			if claims.ClientID != "" {
				session.Respondent.ClientID = claims.ClientID
			}
		}

		ctx := context.WithValue(r.Context(), RespondentKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminID extracts admin ID from context
func GetAdminID(ctx context.Context) string {
	if v := ctx.Value(AdminIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetRespondent returns the respondent admitted for surveyID. A token issued
// for another survey contributes nothing but the client id.
func GetRespondent(ctx context.Context, surveyID string) model.Respondent {
	session, ok := ctx.Value(RespondentKey).(RespondentSession)
	if !ok {
		return model.Respondent{}
	}
	if session.SurveyID != "" && session.SurveyID != surveyID {
		return model.Respondent{ClientID: session.Respondent.ClientID}
	}
	return session.Respondent
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "UNAUTHORIZED"})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
