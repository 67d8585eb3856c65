package model

import (
	"encoding/json"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = bluemonday.UGCPolicy()

// RichText is admin-authored markup. It is sanitized whenever it is decoded or
// constructed so stored and served values never carry scripts or handlers.
type RichText string

// NewRichText sanitizes raw markup
func NewRichText(raw string) RichText {
	return RichText(richTextPolicy.Sanitize(raw))
}

// String returns the sanitized markup
func (t RichText) String() string {
	return string(t)
}

// UnmarshalJSON sanitizes incoming markup
func (t *RichText) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = NewRichText(raw)
	return nil
}
