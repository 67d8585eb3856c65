package service

import (
	"context"
	"surveyforge/internal/apperror"
	"surveyforge/internal/cache"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
	"time"
)

// SurveyLoader loads survey definitions
type SurveyLoader interface {
	Get(ctx context.Context, id string) (*model.Survey, error)
}

// SubmissionService commits answer maps as response records
type SubmissionService struct {
	surveys      SurveyLoader
	responseRepo repository.ResponseRepo
	markers      cache.RespondentCache
	summaries    cache.SummaryCache
	broadcaster  Broadcaster
	log          *logger.Logger
	now          func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	surveys SurveyLoader,
	responseRepo repository.ResponseRepo,
	markers cache.RespondentCache,
	summaries cache.SummaryCache,
	log *logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		surveys:      surveys,
		responseRepo: responseRepo,
		markers:      markers,
		summaries:    summaries,
		log:          log,
		now:          time.Now,
	}
}

// SetBroadcaster sets the live results broadcaster
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit stores a new response for the survey and returns its id.
//
// The gate is replayed server-side before writing: private surveys require an
// allow-listed email and one-response surveys require an identity and reject
// repeat respondents. Answers go through a FormSession on that gate. Each
// successful call creates a new record; the call is not idempotent.
func (s *SubmissionService) Submit(ctx context.Context, surveyID string, answers model.AnswerMap, respondent model.Respondent) (string, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return "", err
	}

	gate := NewAccessGate(survey, s.responseRepo, s.markers)
	if err := gate.Restore(respondent); err != nil {
		return "", err
	}
	if err := gate.RequireIdentity(); err != nil {
		return "", err
	}
	if _, err := gate.CheckResponded(ctx); err != nil {
		return "", apperror.Wrap(apperror.ErrSubmissionFailed, err)
	}

	session := NewFormSession(survey, gate)
	if err := session.Load(answers); err != nil {
		return "", err
	}
	if err := session.Validate(); err != nil {
		return "", err
	}
	clean := session.Answers()

	admitted := gate.Respondent()
	record := &model.Response{
		SurveyID:        survey.ID,
		Answers:         clean,
		SubmittedAt:     s.now().UTC(),
		RespondentEmail: admitted.Email,
		ClientID:        admitted.ClientID,
	}
	id, err := s.responseRepo.Create(ctx, record)
	if err != nil {
		s.log.Error(ctx, "response insert failed", err, map[string]interface{}{"survey_id": survey.ID})
		return "", apperror.Wrap(apperror.ErrSubmissionFailed, err)
	}

	fields := map[string]interface{}{"survey_id": survey.ID, "response_id": id}
	if err := gate.MarkResponded(ctx); err != nil {
		s.log.Warn(ctx, "respondent marker not set", fields, map[string]interface{}{"error": err.Error()})
	}
	if err := s.summaries.Invalidate(ctx, survey.ID); err != nil {
		s.log.Warn(ctx, "summary cache invalidation failed", fields, map[string]interface{}{"error": err.Error()})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurveyAdmins(survey.ID, EventResponseSubmitted, map[string]interface{}{
			"responseId":  id,
			"submittedAt": record.SubmittedAt,
		})
	}

	s.log.Info(ctx, "response submitted", fields)
	return id, nil
}
