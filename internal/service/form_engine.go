package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"surveyforge/internal/apperror"
	"surveyforge/internal/model"
	"time"
	"unicode"
	"unicode/utf8"
)

// Widget is the input control a field renders as
type Widget string

const (
	WidgetTextInput      Widget = "text-input"
	WidgetTextArea       Widget = "textarea"
	WidgetRadioGroup     Widget = "radio-group"
	WidgetCheckboxGroup  Widget = "checkbox-group"
	WidgetSelect         Widget = "select"
	WidgetDatePicker     Widget = "date-picker"
	WidgetRatingIcons    Widget = "rating-icons"
	WidgetSegmentedScale Widget = "segmented-scale"
)

// DateLayout is the stored format of date answers
const DateLayout = "2006-01-02"

// Scale end labels shown under rating widgets
const (
	LabelScaleMin = "Muy insatisfecho"
	LabelScaleMax = "Muy satisfecho"
)

// RatingTier groups rating positions for icon and color selection
type RatingTier string

const (
	TierLow  RatingTier = "low"
	TierMid  RatingTier = "mid"
	TierHigh RatingTier = "high"
)

var tierColors = map[RatingTier]string{
	TierLow:  "#ef4444",
	TierMid:  "#facc15",
	TierHigh: "#22c55e",
}

// NPSBand is the named band of a numeric-scale position
type NPSBand string

const (
	BandDetractor NPSBand = "detractor"
	BandNeutral   NPSBand = "neutral"
	BandPromoter  NPSBand = "promoter"
)

// BandRange is an inclusive run of scale positions sharing a band
type BandRange struct {
	Band NPSBand `json:"band"`
	From int     `json:"from"`
	To   int     `json:"to"`
}

// Field is the input contract for one answerable question
type Field struct {
	QuestionID string           `json:"questionId"`
	Number     int              `json:"number"`
	Title      string           `json:"title"`
	Required   bool             `json:"required"`
	Widget     Widget           `json:"widget"`
	Kind       model.AnswerKind `json:"kind"`
	Options    []model.Option   `json:"options,omitempty"`
	InputType  model.InputType  `json:"inputType,omitempty"`
	MaxLength  int              `json:"maxLength,omitempty"`
	Max        int              `json:"max,omitempty"`
	IconStyle  model.IconStyle  `json:"iconStyle,omitempty"`
	Colors     []string         `json:"colors,omitempty"`
	Bands      []BandRange      `json:"bands,omitempty"`
	MinLabel   string           `json:"minLabel,omitempty"`
	MaxLabel   string           `json:"maxLabel,omitempty"`
	ImageURL   string           `json:"imageUrl,omitempty"`
}

// FormSection is a titled group of fields
type FormSection struct {
	Title  string  `json:"title,omitempty"`
	Fields []Field `json:"fields"`
}

// Form is the respondent view of a survey
type Form struct {
	SurveyID        string             `json:"surveyId"`
	Title           string             `json:"title"`
	Description     model.RichText     `json:"description,omitempty"`
	Theme           *model.ThemeConfig `json:"theme,omitempty"`
	Sections        []FormSection      `json:"sections"`
	ThankYouMessage model.RichText     `json:"thankYouMessage,omitempty"`
	FooterMessage   model.RichText     `json:"footerMessage,omitempty"`
}

// BuildForm renders a survey definition into sections of input contracts
func BuildForm(survey *model.Survey) *Form {
	form := &Form{
		SurveyID:        survey.ID,
		Title:           survey.Title,
		Description:     survey.Description,
		Theme:           survey.Theme,
		Sections:        []FormSection{},
		ThankYouMessage: survey.ThankYouMessage,
		FooterMessage:   survey.FooterMessage,
	}
	active := survey.ActiveColor()
	for _, section := range survey.Sections() {
		fs := FormSection{Title: section.Title, Fields: make([]Field, 0, len(section.Questions))}
		for _, q := range section.Questions {
			fs.Fields = append(fs.Fields, FieldFor(q, active))
		}
		form.Sections = append(form.Sections, fs)
	}
	return form
}

// FieldFor maps a question to its input contract
func FieldFor(q model.NumberedQuestion, activeColor string) Field {
	kind, _ := model.KindFor(q.Type)
	f := Field{
		QuestionID: q.ID,
		Number:     q.Number,
		Title:      q.Title,
		Required:   q.Required,
		Kind:       kind,
		ImageURL:   q.ImageURL,
	}

	switch q.Type {
	case model.QuestionTypeShortText, model.QuestionTypeLongText:
		f.Widget = WidgetTextInput
		if q.Type == model.QuestionTypeLongText {
			f.Widget = WidgetTextArea
		}
		f.InputType = q.InputKind()
		if q.Validation != nil {
			f.MaxLength = q.Validation.MaxLength
		}
	case model.QuestionTypeSingleChoice:
		f.Widget = WidgetRadioGroup
		f.Options = q.Options
	case model.QuestionTypeMultiChoice:
		f.Widget = WidgetCheckboxGroup
		f.Options = q.Options
	case model.QuestionTypeDropdown:
		f.Widget = WidgetSelect
		f.Options = q.Options
	case model.QuestionTypeDate:
		f.Widget = WidgetDatePicker
	case model.QuestionTypeStarRating:
		f.Widget = WidgetRatingIcons
		f.Max = q.MaxValue()
		f.IconStyle = q.IconStyle
		if f.IconStyle == "" {
			f.IconStyle = model.IconStar
		}
		f.MinLabel, f.MaxLabel = LabelScaleMin, LabelScaleMax
		for k := 1; k <= f.Max; k++ {
			f.Colors = append(f.Colors, RatingColor(k, f.Max, activeColor))
		}
	case model.QuestionTypeNumericScale:
		f.Widget = WidgetSegmentedScale
		f.Max = q.MaxValue()
		f.MinLabel, f.MaxLabel = LabelScaleMin, LabelScaleMax
		for k := 1; k <= f.Max; k++ {
			f.Colors = append(f.Colors, ScaleColor(k, f.Max, activeColor))
		}
		if q.NPS {
			f.Bands = NPSBands(f.Max)
		}
	case model.QuestionTypeSectionHeader:
		// headers are consumed by grouping and never reach here
	}
	return f
}

// FilterText applies a text question's live-input rules: digits-only strips
// non-digits, letters-only strips digits, then the value is cut to maxLength.
func FilterText(v *model.Validation, raw string) string {
	if v == nil {
		return raw
	}

	out := raw
	switch v.InputType {
	case model.InputDigitsOnly:
		out = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
	case model.InputLettersOnly:
		out = strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return -1
			}
			return r
		}, raw)
	}

	if v.MaxLength > 0 && utf8.RuneCountInString(out) > v.MaxLength {
		out = string([]rune(out)[:v.MaxLength])
	}
	return out
}

// RatingTierFor places position k of max into a tier: the bottom 40% is
// low, the next 30% mid and the rest high.
func RatingTierFor(k, max int) RatingTier {
	if max <= 0 {
		return TierLow
	}
	ratio := float64(k) / float64(max)
	switch {
	case ratio <= 0.4:
		return TierLow
	case ratio <= 0.7:
		return TierMid
	}
	return TierHigh
}

// RatingColor returns the accent color when configured, else the tier color
func RatingColor(k, max int, activeColor string) string {
	if activeColor != "" {
		return activeColor
	}
	return tierColors[RatingTierFor(k, max)]
}

// ScaleColor runs red to green across a numeric scale unless an accent color
// is configured.
func ScaleColor(k, max int, activeColor string) string {
	if activeColor != "" {
		return activeColor
	}
	hue := 0.0
	if max > 1 {
		hue = float64(k-1) / float64(max-1) * 120
	}
	return fmt.Sprintf("hsl(%d, 80%%, 60%%)", int(math.Round(hue)))
}

// NPSBands splits a scale into detractor, neutral and promoter runs at 60% and
// 80% of max (6/2/2 on the default 10-point scale).
func NPSBands(max int) []BandRange {
	detractorEnd := int(math.Round(float64(max) * 0.6))
	neutralEnd := int(math.Round(float64(max) * 0.8))
	return []BandRange{
		{Band: BandDetractor, From: 1, To: detractorEnd},
		{Band: BandNeutral, From: detractorEnd + 1, To: neutralEnd},
		{Band: BandPromoter, From: neutralEnd + 1, To: max},
	}
}

// ValidateAnswers checks an answer map against the survey: keys must be
// answerable question ids, values must have the shape and range the question
// collects, and every required question needs a non-empty answer.
func ValidateAnswers(survey *model.Survey, answers model.AnswerMap) error {
	var problems []string

	for id, a := range answers {
		q, ok := survey.Question(id)
		if !ok {
			problems = append(problems, id+": unknown question")
			continue
		}
		if msg := checkAnswer(q, a); msg != "" {
			problems = append(problems, id+": "+msg)
		}
	}

	for _, q := range survey.AnswerableQuestions() {
		if !q.Required {
			continue
		}
		if a, ok := answers[q.ID]; !ok || a.IsEmpty() {
			problems = append(problems, q.ID+": required")
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return apperror.WithDetails(apperror.ErrValidationFailed, problems...)
	}
	return nil
}

func checkAnswer(q *model.Question, a model.Answer) string {
	want, ok := model.KindFor(q.Type)
	if !ok {
		return "section headers do not take answers"
	}
	if a.Kind != want {
		return fmt.Sprintf("expected %s answer", want)
	}

	switch q.Type {
	case model.QuestionTypeShortText, model.QuestionTypeLongText:
		if q.Validation != nil && q.Validation.MaxLength > 0 && utf8.RuneCountInString(a.Text) > q.Validation.MaxLength {
			return "too long"
		}
	case model.QuestionTypeSingleChoice, model.QuestionTypeDropdown:
		if a.Text != "" && !q.HasOption(a.Text) {
			return "not an option"
		}
	case model.QuestionTypeMultiChoice:
		seen := make(map[string]bool, len(a.Choices))
		for _, v := range a.Choices {
			if !q.HasOption(v) {
				return "not an option"
			}
			if seen[v] {
				return "duplicate option"
			}
			seen[v] = true
		}
	case model.QuestionTypeDate:
		if a.Text != "" {
			if _, err := time.Parse(DateLayout, a.Text); err != nil {
				return "invalid date"
			}
		}
	case model.QuestionTypeStarRating, model.QuestionTypeNumericScale:
		if a.Number < 1 || a.Number > q.MaxValue() {
			return fmt.Sprintf("out of range 1..%d", q.MaxValue())
		}
	case model.QuestionTypeSectionHeader:
		return "section headers do not take answers"
	}
	return ""
}
