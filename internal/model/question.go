package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeShortText     QuestionType = "short-text"
	QuestionTypeLongText      QuestionType = "long-text"
	QuestionTypeSingleChoice  QuestionType = "single-choice"
	QuestionTypeMultiChoice   QuestionType = "multi-choice"
	QuestionTypeDropdown      QuestionType = "dropdown"
	QuestionTypeDate          QuestionType = "date"
	QuestionTypeStarRating    QuestionType = "star-rating"
	QuestionTypeNumericScale  QuestionType = "numeric-scale"
	QuestionTypeSectionHeader QuestionType = "section-header"
)

// QuestionTypes lists every supported type in builder order
var QuestionTypes = []QuestionType{
	QuestionTypeShortText,
	QuestionTypeLongText,
	QuestionTypeSingleChoice,
	QuestionTypeMultiChoice,
	QuestionTypeDropdown,
	QuestionTypeDate,
	QuestionTypeStarRating,
	QuestionTypeNumericScale,
	QuestionTypeSectionHeader,
}

// legacyTypeNames maps the names used by older survey documents and the bulk
// import format onto the canonical types.
var legacyTypeNames = map[string]QuestionType{
	"text":         QuestionTypeShortText,
	"textarea":     QuestionTypeLongText,
	"radio":        QuestionTypeSingleChoice,
	"checkbox":     QuestionTypeMultiChoice,
	"select":       QuestionTypeDropdown,
	"rating-stars": QuestionTypeStarRating,
	"rating-scale": QuestionTypeNumericScale,
	"section":      QuestionTypeSectionHeader,
}

// ParseQuestionType resolves a canonical or legacy type name.
func ParseQuestionType(s string) (QuestionType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range QuestionTypes {
		if string(t) == s {
			return t, true
		}
	}
	t, ok := legacyTypeNames[s]
	return t, ok
}

// resolveQuestionType maps legacy names onto canonical types. Unknown names
// are kept verbatim so survey normalization can reject them.
func resolveQuestionType(s string) QuestionType {
	if t, ok := ParseQuestionType(s); ok {
		return t
	}
	return QuestionType(s)
}

// UnmarshalJSON accepts canonical and legacy type names
func (t *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("question type must be a string: %w", err)
	}
	*t = resolveQuestionType(s)
	return nil
}

// UnmarshalBSONValue upgrades legacy type names found in stored surveys
func (t *QuestionType) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: bt, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("question type stored as %s", bt)
	}
	*t = resolveQuestionType(s)
	return nil
}

// IsChoice reports whether answers to this type reference option values
func (t QuestionType) IsChoice() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultiChoice, QuestionTypeDropdown:
		return true
	}
	return false
}

// IsText reports whether the type takes free text
func (t QuestionType) IsText() bool {
	return t == QuestionTypeShortText || t == QuestionTypeLongText
}

// InputType is the character class accepted by a text question
type InputType string

const (
	InputAny         InputType = "any"
	InputLettersOnly InputType = "letters-only"
	InputDigitsOnly  InputType = "digits-only"
)

// Validation constrains free-text input
type Validation struct {
	InputType InputType `json:"inputType,omitempty" bson:"inputType,omitempty"`
	MaxLength int       `json:"maxLength,omitempty" bson:"maxLength,omitempty"`
}

// IconStyle is the visual variant of a star-rating question
type IconStyle string

const (
	IconStar  IconStyle = "star"
	IconHeart IconStyle = "heart"
	IconUser  IconStyle = "user"
	IconSmile IconStyle = "smile"
)

const (
	DefaultStarMax  = 5
	DefaultScaleMax = 10
)

// Option is a selectable answer for choice questions
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// Question is a single item of a survey. Section headers only carry a title.
type Question struct {
	ID         string       `json:"id" bson:"id"`
	Type       QuestionType `json:"type" bson:"type"`
	Title      string       `json:"title" bson:"title"`
	Required   bool         `json:"required" bson:"required"`
	Options    []Option     `json:"options,omitempty" bson:"options,omitempty"`
	Validation *Validation  `json:"validation,omitempty" bson:"validation,omitempty"`
	IconStyle  IconStyle    `json:"iconStyle,omitempty" bson:"iconStyle,omitempty"`
	Max        int          `json:"max,omitempty" bson:"max,omitempty"`
	NPS        bool         `json:"nps,omitempty" bson:"nps,omitempty"`
	ImageURL   string       `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// IsHeader reports whether the question is a section boundary
func (q *Question) IsHeader() bool {
	return q.Type == QuestionTypeSectionHeader
}

// MaxValue returns the configured maximum for rating types, falling back to defaults
func (q *Question) MaxValue() int {
	if q.Max > 0 {
		return q.Max
	}
	switch q.Type {
	case QuestionTypeStarRating:
		return DefaultStarMax
	case QuestionTypeNumericScale:
		return DefaultScaleMax
	}
	return 0
}

// OptionLabel resolves an option value to its label
func (q *Question) OptionLabel(value string) (string, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// HasOption reports whether value is one of the question's option values
func (q *Question) HasOption(value string) bool {
	_, ok := q.OptionLabel(value)
	return ok
}

// InputKind returns the effective character class, defaulting to any
func (q *Question) InputKind() InputType {
	if q.Validation == nil || q.Validation.InputType == "" {
		return InputAny
	}
	return q.Validation.InputType
}
