package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"surveyforge/internal/cache"
	"surveyforge/internal/export"
	"surveyforge/internal/logger"
	"surveyforge/internal/model"
	"surveyforge/internal/repository"
	"time"
)

// Display conventions shared by the dashboard and the export
const (
	NoAnswerPlaceholder = "Sin respuesta"
	ListSeparator       = " - "
	TimestampColumn     = "Fecha"
	LabelYes            = "Sí"
	LabelNo             = "No"
	RecentWindow        = 7 * 24 * time.Hour
)

// ResultsService turns stored responses into dashboard rows, counters and CSV
type ResultsService struct {
	surveys      SurveyLoader
	responseRepo repository.ResponseRepo
	summaries    cache.SummaryCache
	log          *logger.Logger
	location     *time.Location
	now          func() time.Time
}

// NewResultsService creates a new results service. Export timestamps are
// rendered in loc (UTC when nil).
func NewResultsService(surveys SurveyLoader, responseRepo repository.ResponseRepo, summaries cache.SummaryCache, log *logger.Logger, loc *time.Location) *ResultsService {
	if loc == nil {
		loc = time.UTC
	}
	return &ResultsService{
		surveys:      surveys,
		responseRepo: responseRepo,
		summaries:    summaries,
		log:          log,
		location:     loc,
		now:          time.Now,
	}
}

// Results loads a survey's responses and projects them for display
func (s *ResultsService) Results(ctx context.Context, surveyID string) (*model.Results, error) {
	survey, responses, err := s.load(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return &model.Results{
		SurveyID: survey.ID,
		Title:    survey.Title,
		Columns:  Columns(survey),
		Rows:     ProjectRows(survey, responses),
		Summary:  Summarize(responses, s.now()),
	}, nil
}

// Summary returns the counters only, served from cache when fresh
func (s *ResultsService) Summary(ctx context.Context, surveyID string) (*model.ResultsSummary, error) {
	if cached, err := s.summaries.Get(ctx, surveyID); err == nil && cached != nil {
		return cached, nil
	}

	_, responses, err := s.load(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(responses, s.now())
	if err := s.summaries.Set(ctx, surveyID, &summary); err != nil {
		s.log.Warn(ctx, "summary cache write failed", map[string]interface{}{"survey_id": surveyID, "error": err.Error()})
	}
	return &summary, nil
}

// ExportCSV writes the survey's responses as CSV and returns the file name
func (s *ResultsService) ExportCSV(ctx context.Context, surveyID string, w io.Writer) (string, error) {
	survey, responses, err := s.load(ctx, surveyID)
	if err != nil {
		return "", err
	}

	header := append([]string{TimestampColumn}, Columns(survey)...)
	rows := make([][]string, 0, len(responses))
	for _, row := range ProjectRows(survey, responses) {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, export.FormatTimestamp(row.SubmittedAt, s.location))
		record = append(record, row.Values...)
		rows = append(rows, record)
	}

	if err := export.NewWriter(w).WriteAll(header, rows); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	s.log.Info(ctx, "results exported", map[string]interface{}{"survey_id": surveyID, "rows": len(rows)})
	return export.Filename(survey.Title), nil
}

func (s *ResultsService) load(ctx context.Context, surveyID string) (*model.Survey, []*model.Response, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.responseRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return survey, responses, nil
}

// Columns returns the titles of the answerable questions in survey order
func Columns(survey *model.Survey) []string {
	questions := survey.AnswerableQuestions()
	cols := make([]string, 0, len(questions))
	for _, q := range questions {
		cols = append(cols, q.Title)
	}
	return cols
}

// ProjectRows renders each response as one display value per answerable question
func ProjectRows(survey *model.Survey, responses []*model.Response) []model.ResultRow {
	questions := survey.AnswerableQuestions()
	rows := make([]model.ResultRow, 0, len(responses))
	for _, r := range responses {
		values := make([]string, 0, len(questions))
		for i := range questions {
			a, ok := r.Answers[questions[i].ID]
			values = append(values, DisplayValue(&questions[i], a, ok))
		}
		rows = append(rows, model.ResultRow{
			ResponseID:  r.ID,
			SubmittedAt: r.SubmittedAt,
			Email:       r.RespondentEmail,
			Values:      values,
		})
	}
	return rows
}

// DisplayValue renders one answer. Choice values resolve to option labels
// (the raw value is kept when no option matches), lists are joined with
// ListSeparator and missing answers show NoAnswerPlaceholder.
func DisplayValue(q *model.Question, a model.Answer, present bool) string {
	if !present || a.IsEmpty() {
		return NoAnswerPlaceholder
	}

	switch a.Kind {
	case model.AnswerText:
		if q.Type.IsChoice() {
			return optionLabel(q, a.Text)
		}
		return a.Text
	case model.AnswerChoices:
		labels := make([]string, 0, len(a.Choices))
		for _, v := range a.Choices {
			labels = append(labels, optionLabel(q, v))
		}
		return strings.Join(labels, ListSeparator)
	case model.AnswerNumber:
		return strconv.Itoa(a.Number)
	case model.AnswerBool:
		if a.Bool {
			return LabelYes
		}
		return LabelNo
	}
	return NoAnswerPlaceholder
}

func optionLabel(q *model.Question, value string) string {
	if label, ok := q.OptionLabel(value); ok {
		return label
	}
	return value
}

// Summarize counts responses, finds the latest submission and counts those
// submitted strictly after now minus RecentWindow.
func Summarize(responses []*model.Response, now time.Time) model.ResultsSummary {
	summary := model.ResultsSummary{
		Total:        len(responses),
		RecentWindow: RecentWindow.String(),
	}
	cutoff := now.Add(-RecentWindow)
	for _, r := range responses {
		if summary.LatestAt == nil || r.SubmittedAt.After(*summary.LatestAt) {
			ts := r.SubmittedAt
			summary.LatestAt = &ts
		}
		if r.SubmittedAt.After(cutoff) {
			summary.RecentCount++
		}
	}
	return summary
}
