package service

import (
	"context"
	"fmt"
	"strings"
	"surveyforge/internal/apperror"
	"surveyforge/internal/cache"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"

	"github.com/google/uuid"
)

const maxRatingPositions = 20

// SurveyService handles survey CRUD operations. Reads go through the survey
// cache; writes invalidate it.
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	surveyCache  cache.SurveyCache
	markers      cache.RespondentCache
	summaries    cache.SummaryCache
	broadcaster  Broadcaster
	log          *logger.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(
	surveyRepo repository.SurveyRepo,
	responseRepo repository.ResponseRepo,
	surveyCache cache.SurveyCache,
	markers cache.RespondentCache,
	summaries cache.SummaryCache,
	log *logger.Logger,
) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		surveyCache:  surveyCache,
		markers:      markers,
		summaries:    summaries,
		log:          log,
	}
}

// SetBroadcaster sets the live results broadcaster
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// NewDefaultSurvey returns the template a fresh survey starts from
func NewDefaultSurvey() *model.Survey {
	return &model.Survey{
		Title:   model.DefaultSurveyTitle,
		Privacy: model.PrivacyPublic,
		Questions: []model.Question{
			{ID: uuid.NewString(), Type: model.QuestionTypeShortText, Title: "Pregunta 1"},
		},
	}
}

// DefaultOption returns the placeholder for the n-th option (1-based)
func DefaultOption(n int) model.Option {
	return model.Option{
		Label: fmt.Sprintf("Opción %d", n),
		Value: fmt.Sprintf("opcion-%d", n),
	}
}

// Create validates, normalizes and stores a new survey
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) (string, error) {
	if err := normalizeSurvey(survey); err != nil {
		return "", err
	}
	id, err := s.surveyRepo.Create(ctx, survey)
	if err != nil {
		return "", fmt.Errorf("failed to create survey: %w", err)
	}
	s.log.Info(ctx, "survey created", map[string]interface{}{"survey_id": id})
	return id, nil
}

// Get loads a survey, returning ErrNotFound when it does not exist
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	if cached, err := s.surveyCache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Warn(ctx, "survey cache read failed", map[string]interface{}{"survey_id": id, "error": err.Error()})
	}

	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	if survey == nil {
		return nil, apperror.ErrNotFound
	}

	if err := s.surveyCache.Set(ctx, survey); err != nil {
		s.log.Warn(ctx, "survey cache write failed", map[string]interface{}{"survey_id": id, "error": err.Error()})
	}
	return survey, nil
}

// List returns all surveys, newest first
func (s *SurveyService) List(ctx context.Context) ([]*model.Survey, error) {
	surveys, err := s.surveyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, nil
}

// Update merges the survey into the stored document. The id never changes.
func (s *SurveyService) Update(ctx context.Context, survey *model.Survey) error {
	if err := normalizeSurvey(survey); err != nil {
		return err
	}
	if err := s.surveyRepo.Upsert(ctx, survey); err != nil {
		return fmt.Errorf("failed to save survey: %w", err)
	}
	s.invalidate(ctx, survey.ID)
	return nil
}

// Delete removes a survey together with its responses
func (s *SurveyService) Delete(ctx context.Context, id string) error {
	existing, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load survey: %w", err)
	}
	if existing == nil {
		return apperror.ErrNotFound
	}

	deleted, err := s.responseRepo.DeleteBySurvey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.invalidate(ctx, id)
	if err := s.markers.Clear(ctx, id); err != nil {
		s.log.Warn(ctx, "respondent markers not cleared", map[string]interface{}{"survey_id": id, "error": err.Error()})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurveyAdmins(id, EventSurveyDeleted, map[string]string{"surveyId": id})
		s.broadcaster.DisconnectSurvey(id)
	}
	s.log.Info(ctx, "survey deleted", map[string]interface{}{"survey_id": id, "responses_deleted": deleted})
	return nil
}

// Duplicate copies a survey's content under a new id
func (s *SurveyService) Duplicate(ctx context.Context, id string) (string, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	dup := *src
	dup.ID = ""
	dup.Title = strings.TrimSpace(src.Title) + " (copia)"
	dup.Questions = append([]model.Question(nil), src.Questions...)
	dup.AllowedEmails = append([]string(nil), src.AllowedEmails...)
	if src.Theme != nil {
		theme := *src.Theme
		dup.Theme = &theme
	}
	return s.Create(ctx, &dup)
}

// ImportQuestions parses bulk text and appends (or replaces) the questions
func (s *SurveyService) ImportQuestions(ctx context.Context, id, text string, replace bool) (*model.Survey, error) {
	questions, err := ParseQuestionImport(text)
	if err != nil {
		return nil, err
	}

	survey, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if replace {
		survey.Questions = questions
	} else {
		survey.Questions = append(survey.Questions, questions...)
	}

	if err := s.Update(ctx, survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) invalidate(ctx context.Context, id string) {
	if err := s.surveyCache.Invalidate(ctx, id); err != nil {
		s.log.Warn(ctx, "survey cache invalidation failed", map[string]interface{}{"survey_id": id, "error": err.Error()})
	}
	if err := s.summaries.Invalidate(ctx, id); err != nil {
		s.log.Warn(ctx, "summary cache invalidation failed", map[string]interface{}{"survey_id": id, "error": err.Error()})
	}
}

// normalizeSurvey fills defaults and enforces the definition invariants
func normalizeSurvey(survey *model.Survey) error {
	survey.Title = strings.TrimSpace(survey.Title)
	if survey.Title == "" {
		survey.Title = model.DefaultSurveyTitle
	}
	switch survey.Privacy {
	case "":
		survey.Privacy = model.PrivacyPublic
	case model.PrivacyPublic, model.PrivacyPrivate:
	default:
		return apperror.InvalidInput(fmt.Sprintf("unknown privacy %q", survey.Privacy))
	}
	survey.AllowedEmails = model.NormalizeEmails(survey.AllowedEmails)
	if survey.Theme != nil {
		if err := ValidateTheme(survey.Theme); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(survey.Questions))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if seen[q.ID] {
			return apperror.InvalidInput("duplicate question id " + q.ID)
		}
		seen[q.ID] = true

		if err := normalizeQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

func normalizeQuestion(q *model.Question) error {
	if _, ok := model.KindFor(q.Type); !ok && !q.IsHeader() {
		return apperror.InvalidInput(fmt.Sprintf("question %s has unknown type %q", q.ID, q.Type))
	}

	if q.IsHeader() {
		q.Required = false
		q.Options = nil
		q.Validation = nil
		return nil
	}

	if !q.Type.IsChoice() {
		q.Options = nil
	}
	values := make(map[string]bool, len(q.Options))
	for i := range q.Options {
		o := &q.Options[i]
		if o.Label == "" && o.Value == "" {
			*o = DefaultOption(i + 1)
		}
		if o.Value == "" {
			o.Value = o.Label
		}
		if values[o.Value] {
			return apperror.InvalidInput(fmt.Sprintf("question %s repeats option value %q", q.ID, o.Value))
		}
		values[o.Value] = true
	}

	if !q.Type.IsText() {
		q.Validation = nil
	} else if q.Validation != nil {
		switch q.Validation.InputType {
		case "", model.InputAny, model.InputLettersOnly, model.InputDigitsOnly:
		default:
			return apperror.InvalidInput(fmt.Sprintf("question %s has unknown input type %q", q.ID, q.Validation.InputType))
		}
		if q.Validation.MaxLength < 0 {
			return apperror.InvalidInput(fmt.Sprintf("question %s has a negative max length", q.ID))
		}
	}

	switch q.Type {
	case model.QuestionTypeStarRating, model.QuestionTypeNumericScale:
		if q.Max < 0 || q.Max > maxRatingPositions {
			return apperror.InvalidInput(fmt.Sprintf("question %s max must be between 1 and %d", q.ID, maxRatingPositions))
		}
	default:
		q.Max = 0
	}
	if q.Type != model.QuestionTypeStarRating {
		q.IconStyle = ""
	}
	if q.Type != model.QuestionTypeNumericScale {
		q.NPS = false
	}
	return nil
}
