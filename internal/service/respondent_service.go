package service

import (
	"context"
	"fmt"
	"surveyforge/internal/apperror"
	"surveyforge/internal/cache"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// PublicSurvey is what anyone holding the link may see before the gate.
// The allow-list is deliberately absent.
type PublicSurvey struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      model.RichText     `json:"description,omitempty"`
	Theme            *model.ThemeConfig `json:"theme,omitempty"`
	Privacy          model.Privacy      `json:"privacy"`
	LimitOneResponse bool               `json:"limitOneResponse"`
	ThankYouMessage  model.RichText     `json:"thankYouMessage,omitempty"`
	FooterMessage    model.RichText     `json:"footerMessage,omitempty"`
	State            GateState          `json:"state"`
}

// AccessResult reports the gate outcome and, once unlocked, the form
type AccessResult struct {
	State    GateState `json:"state"`
	Token    string    `json:"token,omitempty"`
	ClientID string    `json:"clientId,omitempty"`
	Form     *Form     `json:"form,omitempty"`
}

// RespondentService drives the respondent path: preview, unlock, form
type RespondentService struct {
	surveys      SurveyLoader
	responseRepo repository.ResponseRepo
	markers      cache.RespondentCache
	authSvc      *AuthService
}

// NewRespondentService creates a new respondent service
func NewRespondentService(surveys SurveyLoader, responseRepo repository.ResponseRepo, markers cache.RespondentCache, authSvc *AuthService) *RespondentService {
	return &RespondentService{
		surveys:      surveys,
		responseRepo: responseRepo,
		markers:      markers,
		authSvc:      authSvc,
	}
}

// View returns the public part of a survey with the initial gate state
func (s *RespondentService) View(ctx context.Context, surveyID string) (*PublicSurvey, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	view := &PublicSurvey{}
	if err := copier.Copy(view, survey); err != nil {
		return nil, fmt.Errorf("failed to build public view: %w", err)
	}
	view.State = NewAccessGate(survey, s.responseRepo, s.markers).State()
	return view, nil
}

// Unlock runs the email step of the gate, then the already-responded check.
// It issues a respondent token scoped to the survey on success.
func (s *RespondentService) Unlock(ctx context.Context, surveyID, email, clientID string) (*AccessResult, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if clientID == "" {
		clientID = uuid.NewString()
	}
	gate := NewAccessGate(survey, s.responseRepo, s.markers)
	gate.SetClientID(clientID)
	if err := gate.Unlock(email); err != nil {
		return nil, err
	}
	return s.result(ctx, survey, gate)
}

// OpenForm replays an admitted respondent and returns the form when the gate
// allows answering. A missing client id is generated as in Unlock.
func (s *RespondentService) OpenForm(ctx context.Context, surveyID string, respondent model.Respondent) (*AccessResult, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if respondent.ClientID == "" {
		respondent.ClientID = uuid.NewString()
	}
	gate := NewAccessGate(survey, s.responseRepo, s.markers)
	if err := gate.Restore(respondent); err != nil {
		return nil, err
	}
	return s.result(ctx, survey, gate)
}

func (s *RespondentService) result(ctx context.Context, survey *model.Survey, gate *AccessGate) (*AccessResult, error) {
	state, err := gate.CheckResponded(ctx)
	if err != nil {
		return nil, err
	}

	admitted := gate.Respondent()
	result := &AccessResult{State: state, ClientID: admitted.ClientID}
	if state != GateUnlocked {
		return result, nil
	}

	token, err := s.authSvc.GenerateRespondentToken(survey.ID, admitted)
	if err != nil {
		return nil, apperror.Wrap(apperror.New(apperror.CodeInternal, "no se pudo iniciar la sesión"), err)
	}
	result.Token = token
	result.Form = BuildForm(survey)
	return result, nil
}
