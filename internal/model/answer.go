package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AnswerKind tags the shape of an Answer
type AnswerKind string

const (
	AnswerText    AnswerKind = "text"
	AnswerNumber  AnswerKind = "number"
	AnswerChoices AnswerKind = "choices"
	AnswerBool    AnswerKind = "bool" // only found in legacy documents
)

// KindFor returns the answer shape a question type collects. Section headers
// collect nothing and report false.
func KindFor(t QuestionType) (AnswerKind, bool) {
	switch t {
	case QuestionTypeShortText, QuestionTypeLongText, QuestionTypeSingleChoice, QuestionTypeDropdown, QuestionTypeDate:
		return AnswerText, true
	case QuestionTypeStarRating, QuestionTypeNumericScale:
		return AnswerNumber, true
	case QuestionTypeMultiChoice:
		return AnswerChoices, true
	case QuestionTypeSectionHeader:
		return "", false
	}
	return "", false
}

// Answer is a single question's value. Exactly one payload field is
// meaningful, selected by Kind.
type Answer struct {
	Kind    AnswerKind
	Text    string
	Number  int
	Choices []string
	Bool    bool
}

// TextAnswer builds a text answer
func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }

// NumberAnswer builds a numeric answer
func NumberAnswer(n int) Answer { return Answer{Kind: AnswerNumber, Number: n} }

// ChoicesAnswer builds a multi-choice answer
func ChoicesAnswer(values ...string) Answer {
	return Answer{Kind: AnswerChoices, Choices: append([]string{}, values...)}
}

// BoolAnswer builds a boolean answer
func BoolAnswer(b bool) Answer { return Answer{Kind: AnswerBool, Bool: b} }

// IsEmpty reports whether the answer counts as missing for required checks
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerText:
		return a.Text == ""
	case AnswerChoices:
		return len(a.Choices) == 0
	case AnswerNumber, AnswerBool:
		return false
	}
	return true
}

// AnswerMap maps question ids to answers
type AnswerMap map[string]Answer

// MarshalJSON writes the natural JSON shape of the value
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerText:
		return json.Marshal(a.Text)
	case AnswerNumber:
		return json.Marshal(a.Number)
	case AnswerChoices:
		if a.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Choices)
	case AnswerBool:
		return json.Marshal(a.Bool)
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the kind from the JSON shape
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*a = ChoicesAnswer(list...)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = BoolAnswer(b)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("unsupported answer value: %w", err)
		}
		if f != math.Trunc(f) {
			return fmt.Errorf("answer number must be an integer, got %v", f)
		}
		*a = NumberAnswer(int(f))
	}
	return nil
}

// MarshalBSONValue stores the natural shape so documents stay readable
func (a Answer) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch a.Kind {
	case AnswerText:
		return bson.MarshalValue(a.Text)
	case AnswerNumber:
		return bson.MarshalValue(int32(a.Number))
	case AnswerChoices:
		if a.Choices == nil {
			return bson.MarshalValue([]string{})
		}
		return bson.MarshalValue(a.Choices)
	case AnswerBool:
		return bson.MarshalValue(a.Bool)
	}
	return bson.TypeNull, nil, nil
}

// UnmarshalBSONValue infers the kind from the stored BSON type
func (a *Answer) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*a = TextAnswer(raw.StringValue())
	case bson.TypeInt32:
		*a = NumberAnswer(int(raw.Int32()))
	case bson.TypeInt64:
		*a = NumberAnswer(int(raw.Int64()))
	case bson.TypeDouble:
		*a = NumberAnswer(int(raw.Double()))
	case bson.TypeBoolean:
		*a = BoolAnswer(raw.Boolean())
	case bson.TypeArray:
		var list []string
		if err := raw.Unmarshal(&list); err != nil {
			return fmt.Errorf("decode choices: %w", err)
		}
		*a = ChoicesAnswer(list...)
	case bson.TypeNull, bson.TypeUndefined:
		*a = Answer{}
	default:
		return fmt.Errorf("unsupported answer bson type %s", t)
	}
	return nil
}
