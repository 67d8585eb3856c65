package service

import (
	"surveyforge/internal/apperror"
	"surveyforge/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactSurvey() *model.Survey {
	return &model.Survey{
		ID:    "s1",
		Title: "Satisfacción",
		Questions: []model.Question{
			{ID: "phone", Type: model.QuestionTypeShortText, Title: "Teléfono", Required: true,
				Validation: &model.Validation{InputType: model.InputDigitsOnly, MaxLength: 4}},
			{ID: "color", Type: model.QuestionTypeSingleChoice, Title: "Color",
				Options: []model.Option{{Label: "Rojo", Value: "rojo"}, {Label: "Azul", Value: "azul"}}},
			{ID: "tags", Type: model.QuestionTypeMultiChoice, Title: "Etiquetas",
				Options: []model.Option{{Label: "Rápido", Value: "a"}, {Label: "Barato", Value: "b"}, {Label: "Bueno", Value: "c"}}},
			{ID: "h1", Type: model.QuestionTypeSectionHeader, Title: "Valoración"},
			{ID: "stars", Type: model.QuestionTypeStarRating, Title: "Estrellas"},
			{ID: "nps", Type: model.QuestionTypeNumericScale, Title: "Recomendación", NPS: true},
			{ID: "when", Type: model.QuestionTypeDate, Title: "Fecha de visita"},
		},
	}
}

func TestFilterText(t *testing.T) {
	tests := []struct {
		name string
		v    *model.Validation
		raw  string
		want string
	}{
		{"no rules", nil, "abc 123", "abc 123"},
		{"digits only", &model.Validation{InputType: model.InputDigitsOnly}, "a1b2-c3", "123"},
		{"letters only strips digits", &model.Validation{InputType: model.InputLettersOnly}, "Ana 2da", "Ana da"},
		{"max length", &model.Validation{MaxLength: 3}, "abcdef", "abc"},
		{"max length counts runes", &model.Validation{MaxLength: 3}, "ñandú", "ñan"},
		{"filter then cut", &model.Validation{InputType: model.InputDigitsOnly, MaxLength: 2}, "x9y8z7", "98"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterText(tt.v, tt.raw))
		})
	}
}

func TestRatingTierFor(t *testing.T) {
	assert.Equal(t, TierLow, RatingTierFor(1, 5))
	assert.Equal(t, TierLow, RatingTierFor(2, 5))
	assert.Equal(t, TierMid, RatingTierFor(3, 5))
	assert.Equal(t, TierHigh, RatingTierFor(4, 5))
	assert.Equal(t, TierHigh, RatingTierFor(5, 5))
	assert.Equal(t, TierMid, RatingTierFor(7, 10))
	assert.Equal(t, TierHigh, RatingTierFor(8, 10))
}

func TestRatingColor(t *testing.T) {
	assert.Equal(t, "#ef4444", RatingColor(1, 5, ""))
	assert.Equal(t, "#facc15", RatingColor(3, 5, ""))
	assert.Equal(t, "#22c55e", RatingColor(5, 5, ""))
	assert.Equal(t, "#123456", RatingColor(1, 5, "#123456"))
}

func TestScaleColor(t *testing.T) {
	assert.Equal(t, "hsl(0, 80%, 60%)", ScaleColor(1, 10, ""))
	assert.Equal(t, "hsl(120, 80%, 60%)", ScaleColor(10, 10, ""))
	assert.Equal(t, "hsl(60, 80%, 60%)", ScaleColor(3, 5, ""))
	assert.Equal(t, "#abcdef", ScaleColor(3, 5, "#abcdef"))
}

func TestNPSBands(t *testing.T) {
	assert.Equal(t, []BandRange{
		{Band: BandDetractor, From: 1, To: 6},
		{Band: BandNeutral, From: 7, To: 8},
		{Band: BandPromoter, From: 9, To: 10},
	}, NPSBands(10))

	assert.Equal(t, []BandRange{
		{Band: BandDetractor, From: 1, To: 3},
		{Band: BandNeutral, From: 4, To: 4},
		{Band: BandPromoter, From: 5, To: 5},
	}, NPSBands(5))
}

func TestBuildForm(t *testing.T) {
	form := BuildForm(contactSurvey())

	require.Len(t, form.Sections, 2)
	assert.Empty(t, form.Sections[0].Title)
	assert.Equal(t, "Valoración", form.Sections[1].Title)

	first := form.Sections[0].Fields
	require.Len(t, first, 3)
	assert.Equal(t, 1, first[0].Number)
	assert.Equal(t, WidgetTextInput, first[0].Widget)
	assert.Equal(t, model.InputDigitsOnly, first[0].InputType)
	assert.Equal(t, 4, first[0].MaxLength)
	assert.Equal(t, WidgetRadioGroup, first[1].Widget)
	assert.Equal(t, WidgetCheckboxGroup, first[2].Widget)
	assert.Equal(t, model.AnswerChoices, first[2].Kind)

	second := form.Sections[1].Fields
	require.Len(t, second, 3)
	assert.Equal(t, 4, second[0].Number)
	assert.Equal(t, WidgetRatingIcons, second[0].Widget)
	assert.Equal(t, model.DefaultStarMax, second[0].Max)
	assert.Equal(t, model.IconStar, second[0].IconStyle)
	assert.Len(t, second[0].Colors, model.DefaultStarMax)
	assert.Equal(t, WidgetSegmentedScale, second[1].Widget)
	assert.Len(t, second[1].Bands, 3)
	assert.Equal(t, LabelScaleMin, second[1].MinLabel)
	assert.Equal(t, WidgetDatePicker, second[2].Widget)
}

func TestBuildForm_ActiveColorOverridesGradient(t *testing.T) {
	survey := contactSurvey()
	survey.Theme = &model.ThemeConfig{ActiveColor: "#ff00ff"}

	stars := BuildForm(survey).Sections[1].Fields[0]
	for _, c := range stars.Colors {
		assert.Equal(t, "#ff00ff", c)
	}
}

func TestValidateAnswers(t *testing.T) {
	survey := contactSurvey()

	t.Run("valid", func(t *testing.T) {
		err := ValidateAnswers(survey, model.AnswerMap{
			"phone": model.TextAnswer("1234"),
			"color": model.TextAnswer("azul"),
			"tags":  model.ChoicesAnswer("a", "c"),
			"stars": model.NumberAnswer(5),
			"nps":   model.NumberAnswer(10),
			"when":  model.TextAnswer("2026-10-19"),
		})
		assert.NoError(t, err)
	})

	t.Run("only required", func(t *testing.T) {
		assert.NoError(t, ValidateAnswers(survey, model.AnswerMap{"phone": model.TextAnswer("1")}))
	})

	t.Run("problems", func(t *testing.T) {
		err := ValidateAnswers(survey, model.AnswerMap{
			"phone": model.TextAnswer(""),
			"color": model.TextAnswer("verde"),
			"tags":  model.ChoicesAnswer("a", "a"),
			"stars": model.NumberAnswer(6),
			"nps":   model.TextAnswer("10"),
			"when":  model.TextAnswer("19/10/2026"),
			"ghost": model.TextAnswer("x"),
			"h1":    model.TextAnswer("x"),
		})
		require.ErrorIs(t, err, apperror.ErrValidationFailed)
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{
			"color: not an option",
			"ghost: unknown question",
			"h1: section headers do not take answers",
			"nps: expected number answer",
			"phone: required",
			"stars: out of range 1..5",
			"tags: duplicate option",
			"when: invalid date",
		}, appErr.Details)
	})
}
