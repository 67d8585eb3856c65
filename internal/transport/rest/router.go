package rest

import (
	"net/http"
	"surveyforge/internal/config"
	"surveyforge/internal/logger"
	"surveyforge/internal/service"
	"surveyforge/internal/transport/rest/handler"
	"surveyforge/internal/transport/rest/middleware"
	"surveyforge/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	Config            *config.Config
	Logger            *logger.Logger
	AuthService       *service.AuthService
	SurveyService     *service.SurveyService
	RespondentService *service.RespondentService
	SubmissionService *service.SubmissionService
	ResultsService    *service.ResultsService
	ThemeService      *service.ThemeService
	AssetService      *service.AssetService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	log := c.Logger

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, log)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService, c.Config.Survey.PublicBaseURL, log)
	respondHandler := handler.NewRespondHandler(c.RespondentService, c.SubmissionService, log)
	resultsHandler := handler.NewResultsHandler(c.ResultsService, log)
	themeHandler := handler.NewThemeHandler(c.ThemeService, log)
	assetHandler := handler.NewAssetHandler(c.AssetService, c.Config.Survey.MaxUploadBytes, log)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.ResultsService, log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config.CORS))
	r.Use(middleware.RequestLogger(log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/assets/{assetId}", assetHandler.Serve).Methods("GET", "OPTIONS")

	// Respondent routes (token optional, required by the gate on private surveys)
	publicRoutes := v1.PathPrefix("/public").Subrouter()
	publicRoutes.Use(authMW.OptionalRespondent)

	publicRoutes.HandleFunc("/surveys/{surveyId}", respondHandler.View).Methods("GET", "OPTIONS")
	publicRoutes.HandleFunc("/surveys/{surveyId}/access", respondHandler.Access).Methods("POST", "OPTIONS")
	publicRoutes.HandleFunc("/surveys/{surveyId}/form", respondHandler.Form).Methods("GET", "OPTIONS")
	publicRoutes.HandleFunc("/surveys/{surveyId}/responses", respondHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket routes (admin token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}/results", wsHandler.ResultsWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/duplicate", surveyHandler.Duplicate).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/questions/import", surveyHandler.ImportQuestions).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/share", surveyHandler.Share).Methods("GET", "OPTIONS")

	// Results routes (admin only)
	adminRoutes.HandleFunc("/surveys/{surveyId}/results", resultsHandler.Results).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/summary", resultsHandler.Summary).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/export.csv", resultsHandler.Export).Methods("GET", "OPTIONS")

	// Theme library and uploads (admin only)
	adminRoutes.HandleFunc("/themes", themeHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/themes", themeHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/themes/{themeId}", themeHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/assets", assetHandler.Upload).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+middleware.RequestIDHeader)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
