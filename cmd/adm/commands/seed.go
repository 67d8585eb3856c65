package commands

import (
	_ "embed"
	"fmt"
	"strings"
	"surveyforge/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed sample_surveys.yaml
var sampleSurveys []byte

// SeedFile is the YAML layout accepted by `adm surveys seed`
type SeedFile struct {
	Surveys []SeedSurvey `yaml:"surveys"`
}

// SeedSurvey describes one survey to create
type SeedSurvey struct {
	Title            string         `yaml:"title"`
	Description      string         `yaml:"description"`
	Privacy          string         `yaml:"privacy"`
	AllowedEmails    []string       `yaml:"allowedEmails"`
	LimitOneResponse bool           `yaml:"limitOneResponse"`
	ThankYouMessage  string         `yaml:"thankYouMessage"`
	FooterMessage    string         `yaml:"footerMessage"`
	Theme            *SeedTheme     `yaml:"theme"`
	Questions        []SeedQuestion `yaml:"questions"`
}

// SeedTheme is a subset of the theme settings
type SeedTheme struct {
	PrimaryColor    string `yaml:"primaryColor"`
	BackgroundColor string `yaml:"backgroundColor"`
	TextColor       string `yaml:"textColor"`
	ActiveColor     string `yaml:"activeColor"`
	FontFamily      string `yaml:"fontFamily"`
}

// SeedQuestion describes one question. Options are labels; each is also used
// as the stored value.
type SeedQuestion struct {
	Title    string   `yaml:"title"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
	Max      int      `yaml:"max"`
	NPS      bool     `yaml:"nps"`
}

// ParseSeed decodes a seed file into surveys ready to be created
func ParseSeed(data []byte) ([]*model.Survey, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(file.Surveys) == 0 {
		return nil, fmt.Errorf("seed file has no surveys")
	}

	surveys := make([]*model.Survey, 0, len(file.Surveys))
	for i, s := range file.Surveys {
		survey, err := s.toModel()
		if err != nil {
			return nil, fmt.Errorf("survey %d (%s): %w", i+1, s.Title, err)
		}
		surveys = append(surveys, survey)
	}
	return surveys, nil
}

func (s SeedSurvey) toModel() (*model.Survey, error) {
	survey := &model.Survey{
		Title:            s.Title,
		Description:      model.NewRichText(s.Description),
		Privacy:          model.Privacy(strings.ToLower(s.Privacy)),
		AllowedEmails:    s.AllowedEmails,
		LimitOneResponse: s.LimitOneResponse,
		ThankYouMessage:  model.NewRichText(s.ThankYouMessage),
		FooterMessage:    model.NewRichText(s.FooterMessage),
	}
	if s.Theme != nil {
		survey.Theme = &model.ThemeConfig{
			PrimaryColor:    s.Theme.PrimaryColor,
			BackgroundColor: s.Theme.BackgroundColor,
			TextColor:       s.Theme.TextColor,
			ActiveColor:     s.Theme.ActiveColor,
			FontFamily:      s.Theme.FontFamily,
		}
	}

	for i, q := range s.Questions {
		qType := model.QuestionTypeShortText
		if q.Type != "" {
			t, ok := model.ParseQuestionType(q.Type)
			if !ok {
				return nil, fmt.Errorf("question %d: unknown type %q", i+1, q.Type)
			}
			qType = t
		}
		question := model.Question{
			ID:       fmt.Sprintf("q%d", i+1),
			Type:     qType,
			Title:    q.Title,
			Required: q.Required && qType != model.QuestionTypeSectionHeader,
			Max:      q.Max,
			NPS:      q.NPS,
		}
		for _, label := range q.Options {
			label = strings.TrimSpace(label)
			question.Options = append(question.Options, model.Option{Label: label, Value: label})
		}
		survey.Questions = append(survey.Questions, question)
	}
	return survey, nil
}
