package service

// Live results event types
const (
	EventResponseSubmitted = "response_submitted"
	EventSurveyDeleted     = "survey_deleted"
)

// Broadcaster pushes live results events to admins watching a survey
// (interface lives here to avoid an import cycle with the ws package)
type Broadcaster interface {
	BroadcastToSurveyAdmins(surveyID string, msgType string, payload interface{})
	DisconnectSurvey(surveyID string)
}
