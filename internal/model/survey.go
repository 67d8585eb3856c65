package model

import (
	"strings"
	"time"
)

// Privacy controls who may answer a survey
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// DefaultSurveyTitle is used for surveys created without a title
const DefaultSurveyTitle = "Nueva Encuesta"

// ThemeConfig holds the cosmetic attributes of a survey
type ThemeConfig struct {
	PrimaryColor    string `json:"primaryColor,omitempty" bson:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty" bson:"textColor,omitempty"`
	ActiveColor     string `json:"activeColor,omitempty" bson:"activeColor,omitempty"` // rating widgets
	FontFamily      string `json:"fontFamily,omitempty" bson:"fontFamily,omitempty"`
	BannerURL       string `json:"bannerUrl,omitempty" bson:"bannerUrl,omitempty"`
	LogoURL         string `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
}

// SavedTheme is a named theme an admin can reapply to other surveys
type SavedTheme struct {
	ID        string      `json:"id" bson:"_id,omitempty"`
	Name      string      `json:"name" bson:"name"`
	Config    ThemeConfig `json:"config" bson:"config"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
}

// Survey is the persisted definition of a form
type Survey struct {
	ID               string       `json:"id" bson:"_id,omitempty"`
	Title            string       `json:"title" bson:"title"`
	Description      RichText     `json:"description,omitempty" bson:"description,omitempty"`
	Questions        []Question   `json:"questions" bson:"questions"`
	Theme            *ThemeConfig `json:"theme,omitempty" bson:"theme,omitempty"`
	Privacy          Privacy      `json:"privacy" bson:"privacy"`
	AllowedEmails    []string     `json:"allowedEmails,omitempty" bson:"allowedEmails,omitempty"`
	LimitOneResponse bool         `json:"limitOneResponse" bson:"limitOneResponse"`
	ThankYouMessage  RichText     `json:"thankYouMessage,omitempty" bson:"thankYouMessage,omitempty"`
	FooterMessage    RichText     `json:"footerMessage,omitempty" bson:"footerMessage,omitempty"`
	CreatedAt        time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// IsPrivate reports whether the allow-list applies
func (s *Survey) IsPrivate() bool {
	return s.Privacy == PrivacyPrivate
}

// ActiveColor returns the configured rating accent color, if any
func (s *Survey) ActiveColor() string {
	if s.Theme == nil {
		return ""
	}
	return s.Theme.ActiveColor
}

// Question looks up a question by id
func (s *Survey) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// AnswerableQuestions returns the non-header questions in survey order
func (s *Survey) AnswerableQuestions() []Question {
	out := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if !q.IsHeader() {
			out = append(out, q)
		}
	}
	return out
}

// NormalizeEmail trims and lower-cases an email for allow-list comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmails normalizes a list, dropping blanks and duplicates
func NormalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		n := NormalizeEmail(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
