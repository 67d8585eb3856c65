package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"surveyforge/internal/config"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
	"surveyforge/internal/service"
	"surveyforge/internal/transport/ws"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler   http.Handler
	surveys   *memSurveys
	responses *memResponses
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			AdminUsername:      "admin",
			AdminPassword:      "secret",
			JWTSecret:          "router-test",
			AdminTokenTTL:      time.Hour,
			RespondentTokenTTL: time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization, X-Client-ID",
		},
		Survey: config.SurveyConfig{
			PublicBaseURL:  "https://encuestas.example.com",
			MaxUploadBytes: 1 << 20,
		},
	}

	surveys := &memSurveys{docs: map[string]model.Survey{}}
	responses := &memResponses{}
	hub := ws.NewHub(log)
	t.Cleanup(hub.Close)

	authSvc := service.NewAuthService(cfg.Auth)
	surveySvc := service.NewSurveyService(surveys, responses, noCache{}, noMarkers{}, noSummaryCache{}, log)
	surveySvc.SetBroadcaster(hub)
	submissionSvc := service.NewSubmissionService(surveySvc, responses, noMarkers{}, noSummaryCache{}, log)
	submissionSvc.SetBroadcaster(hub)

	handler := NewRouter(&Container{
		Config:            cfg,
		Logger:            log,
		AuthService:       authSvc,
		SurveyService:     surveySvc,
		RespondentService: service.NewRespondentService(surveySvc, responses, noMarkers{}, authSvc),
		SubmissionService: submissionSvc,
		ResultsService:    service.NewResultsService(surveySvc, responses, noSummaryCache{}, log, time.UTC),
		ThemeService:      service.NewThemeService(&memThemes{}, log),
		AssetService: service.NewAssetService(&memAssets{
			files: map[string][]byte{},
			meta:  map[string]*repository.Asset{},
		}, cfg.Survey.MaxUploadBytes, log),
		WSHub: hub,
	})

	login, err := authSvc.Login("admin", "secret")
	require.NoError(t, err)

	return &testServer{handler: handler, surveys: surveys, responses: responses, token: login.Token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.token}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func (s *testServer) createSurvey(t *testing.T, survey *model.Survey) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/surveys", survey, s.admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Survey
	decode(t, rec, &created)
	return created.ID
}

func feedbackSurvey() *model.Survey {
	return &model.Survey{
		Title: "Opinión del curso",
		Questions: []model.Question{
			{ID: "name", Type: model.QuestionTypeShortText, Title: "Nombre", Required: true},
			{ID: "level", Type: model.QuestionTypeDropdown, Title: "Nivel",
				Options: []model.Option{{Label: "Básico", Value: "basic"}, {Label: "Avanzado", Value: "adv"}}},
		},
		ThankYouMessage: "<p>¡Gracias!</p>",
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "secret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password: required")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/surveys", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/surveys", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/surveys", nil, s.admin())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodOptions, "/v1/surveys", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Client-ID")
}

func TestSurveyCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/surveys", nil, s.admin())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Survey
	decode(t, rec, &created)
	assert.Equal(t, model.DefaultSurveyTitle, created.Title)
	require.Len(t, created.Questions, 1)

	created.Title = "Cambiada"
	rec = s.do(t, http.MethodPut, "/v1/surveys/"+created.ID, created, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/surveys/"+created.ID, nil, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Survey
	decode(t, rec, &got)
	assert.Equal(t, "Cambiada", got.Title)

	rec = s.do(t, http.MethodGet, "/v1/surveys/"+created.ID+"/share", nil, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var links service.ShareLinks
	decode(t, rec, &links)
	assert.Equal(t, "https://encuestas.example.com/survey?id="+created.ID, links.URL)

	rec = s.do(t, http.MethodDelete, "/v1/surveys/"+created.ID, nil, s.admin())
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/surveys/"+created.ID, nil, s.admin())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestSurveyValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/surveys", &model.Survey{Privacy: "friends"}, s.admin())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INVALID_INPUT"`)

	id := s.createSurvey(t, feedbackSurvey())
	rec = s.do(t, http.MethodPost, "/v1/surveys/"+id+"/questions/import", map[string]string{}, s.admin())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicSubmitFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t, feedbackSurvey())

	rec := s.do(t, http.MethodGet, "/v1/public/surveys/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.PublicSurvey
	decode(t, rec, &view)
	assert.Equal(t, service.GateUnlocked, view.State)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses",
		map[string]interface{}{"answers": map[string]interface{}{"level": "adv"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name: required")

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses",
		map[string]interface{}{"answers": map[string]interface{}{"name": "Ana", "level": "adv"}}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "¡Gracias!")

	rec = s.do(t, http.MethodGet, "/v1/surveys/"+id+"/results", nil, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var results model.Results
	decode(t, rec, &results)
	require.Len(t, results.Rows, 1)
	assert.Equal(t, []string{"Ana", "Avanzado"}, results.Rows[0].Values)
}

func TestPublicSubmitNullOptionalAnswer(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t, feedbackSurvey())

	rec := s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses",
		map[string]interface{}{"answers": map[string]interface{}{"name": "Ana", "level": nil}}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses",
		map[string]interface{}{"answers": map[string]interface{}{"name": nil}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name: required")
}

func TestPrivateSurveyGate(t *testing.T) {
	s := newTestServer(t)
	survey := feedbackSurvey()
	survey.Privacy = model.PrivacyPrivate
	survey.AllowedEmails = []string{"ana@example.com"}
	survey.LimitOneResponse = true
	id := s.createSurvey(t, survey)
	answers := map[string]interface{}{"answers": map[string]interface{}{"name": "Ana"}}

	rec := s.do(t, http.MethodGet, "/v1/public/surveys/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "ana@example.com")
	assert.Contains(t, rec.Body.String(), `"state":"locked"`)

	rec = s.do(t, http.MethodGet, "/v1/public/surveys/"+id+"/form", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses", answers, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ACCESS_DENIED"`)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/access", map[string]string{"email": "eve@example.com"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/access", map[string]string{"email": " ANA@example.com "}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var access service.AccessResult
	decode(t, rec, &access)
	require.NotEmpty(t, access.Token)
	bearer := map[string]string{"Authorization": "Bearer " + access.Token}

	rec = s.do(t, http.MethodGet, "/v1/public/surveys/"+id+"/form", nil, bearer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses", answers, bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses", answers, bearer)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ALREADY_RESPONDED"`)

	rec = s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/access", map[string]string{"email": "ana@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var again service.AccessResult
	decode(t, rec, &again)
	assert.Equal(t, service.GateAlreadyResponded, again.State)
	assert.Empty(t, again.Token)

	// a respondent token never opens the admin area
	rec = s.do(t, http.MethodGet, "/v1/surveys", nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t, feedbackSurvey())
	rec := s.do(t, http.MethodPost, "/v1/public/surveys/"+id+"/responses",
		map[string]interface{}{"answers": map[string]interface{}{"name": `Ana "la jefa", López`}}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/surveys/"+id+"/export.csv", nil, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="opinion_del_curso.csv"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\uFEFF\"Fecha\",\"Nombre\",\"Nivel\"\n"))
	assert.Contains(t, body, `"Ana ""la jefa"", López","Sin respuesta"`)

	rec = s.do(t, http.MethodGet, "/v1/surveys/missing/export.csv", nil, s.admin())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThemes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/themes", map[string]interface{}{"name": "Mar", "config": map[string]string{"primaryColor": "#0077be"}}, s.admin())
	require.Equal(t, http.StatusCreated, rec.Code)
	var theme model.SavedTheme
	decode(t, rec, &theme)

	rec = s.do(t, http.MethodPost, "/v1/themes", map[string]interface{}{"config": map[string]string{}}, s.admin())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/themes", nil, s.admin())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mar")

	rec = s.do(t, http.MethodDelete, "/v1/themes/"+theme.ID, nil, s.admin())
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssetUploadAndServe(t *testing.T) {
	s := newTestServer(t)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var asset service.UploadedAsset
	decode(t, rec, &asset)
	assert.Equal(t, "/v1/assets/"+asset.ID, asset.URL)

	rec = s.do(t, http.MethodGet, asset.URL, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; sandbox", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/v1/assets/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
