package service

import (
	"bufio"
	"fmt"
	"strings"
	"surveyforge/internal/apperror"
	"surveyforge/internal/model"

	"github.com/google/uuid"
)

// ParseQuestionImport reads one question per line in the form
//
//	title | type | option 1, option 2
//
// Type and options are optional. Unknown types fall back to short text and
// each option uses its label as value. Blank lines are skipped.
func ParseQuestionImport(text string) ([]model.Question, error) {
	var questions []model.Question
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, "|")
		title := strings.TrimSpace(parts[0])
		if title == "" {
			return nil, apperror.InvalidInput(fmt.Sprintf("línea %d: falta el título de la pregunta", line))
		}

		qType := model.QuestionTypeShortText
		if len(parts) > 1 {
			if t, ok := model.ParseQuestionType(parts[1]); ok {
				qType = t
			}
		}

		q := model.Question{
			ID:    uuid.NewString(),
			Type:  qType,
			Title: title,
		}

		if qType.IsChoice() {
			if len(parts) > 2 {
				q.Options = parseImportOptions(parts[2])
			}
			if len(q.Options) == 0 {
				q.Options = []model.Option{DefaultOption(1)}
			}
		}
		questions = append(questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}
	if len(questions) == 0 {
		return nil, apperror.InvalidInput("no hay preguntas para importar")
	}
	return questions, nil
}

func parseImportOptions(s string) []model.Option {
	var options []model.Option
	seen := map[string]bool{}
	for _, label := range strings.Split(s, ",") {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		options = append(options, model.Option{Label: label, Value: label})
	}
	return options
}
