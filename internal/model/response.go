package model

import "time"

// Response is one respondent's submitted answer map. It is written once and
// never updated.
type Response struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	SurveyID        string    `json:"surveyId" bson:"surveyId"`
	Answers         AnswerMap `json:"answers" bson:"answers"`
	SubmittedAt     time.Time `json:"submittedAt" bson:"submittedAt"`
	RespondentEmail string    `json:"respondentEmail,omitempty" bson:"respondentEmail,omitempty"`
	ClientID        string    `json:"-" bson:"clientId,omitempty"`
}

// Respondent identifies who is answering. Email is set only after a private
// survey's gate was passed; ClientID is an opaque browser token.
type Respondent struct {
	Email    string
	ClientID string
}

// ResultRow is a response projected onto the survey's answerable questions
type ResultRow struct {
	ResponseID  string    `json:"responseId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Email       string    `json:"email,omitempty"`
	Values      []string  `json:"values"`
}

// ResultsSummary holds the dashboard counters
type ResultsSummary struct {
	Total        int        `json:"total"`
	LatestAt     *time.Time `json:"latestAt,omitempty"`
	RecentCount  int        `json:"recentCount"`
	RecentWindow string     `json:"recentWindow"`
}

// Results is the admin view of a survey's responses
type Results struct {
	SurveyID string         `json:"surveyId"`
	Title    string         `json:"title"`
	Columns  []string       `json:"columns"`
	Rows     []ResultRow    `json:"rows"`
	Summary  ResultsSummary `json:"summary"`
}
