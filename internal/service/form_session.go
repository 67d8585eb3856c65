package service

import (
	"fmt"
	"sort"
	"surveyforge/internal/apperror"
	"surveyforge/internal/model"
	"time"
)

// FormSession accumulates one respondent's answers in memory. Nothing is
// persisted until the map is handed to the submission pipeline.
type FormSession struct {
	survey  *model.Survey
	gate    *AccessGate
	answers model.AnswerMap
}

// NewFormSession starts an empty answer map for a survey behind a gate
func NewFormSession(survey *model.Survey, gate *AccessGate) *FormSession {
	return &FormSession{
		survey:  survey,
		gate:    gate,
		answers: model.AnswerMap{},
	}
}

// Answers returns a copy of the accumulated answers
func (s *FormSession) Answers() model.AnswerMap {
	out := make(model.AnswerMap, len(s.answers))
	for k, v := range s.answers {
		if v.Kind == model.AnswerChoices {
			v = model.ChoicesAnswer(v.Choices...)
		}
		out[k] = v
	}
	return out
}

// SetText stores filtered text and returns the value actually kept
func (s *FormSession) SetText(questionID, raw string) (string, error) {
	q, err := s.question(questionID, model.QuestionTypeShortText, model.QuestionTypeLongText)
	if err != nil {
		return "", err
	}
	value := FilterText(q.Validation, raw)
	s.answers[questionID] = model.TextAnswer(value)
	return value, nil
}

// Select stores the chosen option of a single-choice or dropdown question. An
// empty value clears a dropdown.
func (s *FormSession) Select(questionID, value string) error {
	q, err := s.question(questionID, model.QuestionTypeSingleChoice, model.QuestionTypeDropdown)
	if err != nil {
		return err
	}
	if value == "" {
		delete(s.answers, questionID)
		return nil
	}
	if !q.HasOption(value) {
		return apperror.InvalidInput(fmt.Sprintf("%q is not an option of %s", value, questionID))
	}
	s.answers[questionID] = model.TextAnswer(value)
	return nil
}

// Toggle adds an option value to a multi-choice answer, or removes it when
// already selected. Selection keeps insertion order.
func (s *FormSession) Toggle(questionID, value string) ([]string, error) {
	q, err := s.question(questionID, model.QuestionTypeMultiChoice)
	if err != nil {
		return nil, err
	}
	if !q.HasOption(value) {
		return nil, apperror.InvalidInput(fmt.Sprintf("%q is not an option of %s", value, questionID))
	}

	current := s.answers[questionID].Choices
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, value)
	}
	s.answers[questionID] = model.ChoicesAnswer(next...)
	return next, nil
}

// SetDate stores an ISO date (YYYY-MM-DD)
func (s *FormSession) SetDate(questionID, iso string) error {
	if _, err := s.question(questionID, model.QuestionTypeDate); err != nil {
		return err
	}
	if iso == "" {
		delete(s.answers, questionID)
		return nil
	}
	if _, err := time.Parse(DateLayout, iso); err != nil {
		return apperror.InvalidInput("la fecha debe tener el formato AAAA-MM-DD")
	}
	s.answers[questionID] = model.TextAnswer(iso)
	return nil
}

// Rate stores position k of a star-rating or numeric-scale question
func (s *FormSession) Rate(questionID string, k int) error {
	q, err := s.question(questionID, model.QuestionTypeStarRating, model.QuestionTypeNumericScale)
	if err != nil {
		return err
	}
	if k < 1 || k > q.MaxValue() {
		return apperror.InvalidInput(fmt.Sprintf("rating must be between 1 and %d", q.MaxValue()))
	}
	s.answers[questionID] = model.NumberAnswer(k)
	return nil
}

// Load replays a submitted answer map through the per-type setters. Null
// entries count as unanswered. Entries that cannot be applied are reported
// together as a validation failure.
func (s *FormSession) Load(answers model.AnswerMap) error {
	if err := s.gate.RequireAnswerable(); err != nil {
		return err
	}

	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var problems []string
	for _, id := range ids {
		a := answers[id]
		if a.Kind == "" {
			continue
		}
		q, ok := s.survey.Question(id)
		if !ok {
			problems = append(problems, id+": unknown question")
			continue
		}
		if msg := s.apply(q, a); msg != "" {
			problems = append(problems, id+": "+msg)
		}
	}

	if len(problems) > 0 {
		return apperror.WithDetails(apperror.ErrValidationFailed, problems...)
	}
	return nil
}

func (s *FormSession) apply(q *model.Question, a model.Answer) string {
	if q.Type.IsText() && a.Kind == model.AnswerText {
		if _, err := s.SetText(q.ID, a.Text); err != nil {
			return err.Error()
		}
		return ""
	}
	if msg := checkAnswer(q, a); msg != "" {
		return msg
	}

	var err error
	switch q.Type {
	case model.QuestionTypeSingleChoice, model.QuestionTypeDropdown:
		err = s.Select(q.ID, a.Text)
	case model.QuestionTypeMultiChoice:
		delete(s.answers, q.ID)
		for _, v := range a.Choices {
			if _, err = s.Toggle(q.ID, v); err != nil {
				break
			}
		}
	case model.QuestionTypeDate:
		err = s.SetDate(q.ID, a.Text)
	case model.QuestionTypeStarRating, model.QuestionTypeNumericScale:
		err = s.Rate(q.ID, a.Number)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Validate runs the submit-time checks on the accumulated answers
func (s *FormSession) Validate() error {
	if err := s.gate.RequireAnswerable(); err != nil {
		return err
	}
	return ValidateAnswers(s.survey, s.answers)
}

func (s *FormSession) question(id string, types ...model.QuestionType) (*model.Question, error) {
	if err := s.gate.RequireAnswerable(); err != nil {
		return nil, err
	}
	q, ok := s.survey.Question(id)
	if !ok {
		return nil, apperror.InvalidInput("unknown question " + id)
	}
	for _, t := range types {
		if q.Type == t {
			return q, nil
		}
	}
	return nil, apperror.InvalidInput(fmt.Sprintf("question %s is %s", id, q.Type))
}
