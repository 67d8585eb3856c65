package service

import (
	"context"
	"fmt"
	"surveyforge/internal/apperror"
	"surveyforge/internal/cache"
	"surveyforge/internal/model"
)

// GateState is the respondent's position in the access flow
type GateState string

const (
	GateLocked           GateState = "locked"
	GateUnlocked         GateState = "unlocked"
	GateAlreadyResponded GateState = "already-responded"
)

// MsgEmailRequired is shown when the unlock form is submitted empty
const MsgEmailRequired = "Por favor ingresa tu correo."

// ResponseChecker answers "has this respondent already submitted"
type ResponseChecker interface {
	ExistsByEmail(ctx context.Context, surveyID, email string) (bool, error)
	ExistsByClient(ctx context.Context, surveyID, clientID string) (bool, error)
}

// AccessGate decides whether a respondent may answer a survey.
//
// Private surveys start locked and unlock only for an email on the
// allow-list; an empty allow-list never unlocks. When the survey accepts a
// single response per person, the already-responded check is scoped to the
// verified email for private surveys and to the client token for public ones.
// already-responded is terminal.
type AccessGate struct {
	survey     *model.Survey
	responses  ResponseChecker
	markers    cache.RespondentCache
	state      GateState
	respondent model.Respondent
}

// NewAccessGate creates a gate in its initial state. markers may be nil.
func NewAccessGate(survey *model.Survey, responses ResponseChecker, markers cache.RespondentCache) *AccessGate {
	state := GateUnlocked
	if survey.IsPrivate() {
		state = GateLocked
	}
	return &AccessGate{
		survey:    survey,
		responses: responses,
		markers:   markers,
		state:     state,
	}
}

// State returns the current gate state
func (g *AccessGate) State() GateState {
	return g.state
}

// Respondent returns who the gate has admitted so far
func (g *AccessGate) Respondent() model.Respondent {
	return g.respondent
}

// SetClientID records the browser token used for public one-response surveys
func (g *AccessGate) SetClientID(clientID string) {
	g.respondent.ClientID = clientID
}

// Unlock attempts the locked -> unlocked transition with an email. On a public
// survey it is a no-op. A rejected email leaves the gate locked.
func (g *AccessGate) Unlock(email string) error {
	switch g.state {
	case GateAlreadyResponded:
		return apperror.ErrAlreadyResponded
	case GateUnlocked:
		if !g.survey.IsPrivate() {
			return nil
		}
	}

	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return apperror.InvalidInput(MsgEmailRequired)
	}

	for _, allowed := range g.survey.AllowedEmails {
		if model.NormalizeEmail(allowed) == normalized {
			g.state = GateUnlocked
			g.respondent.Email = normalized
			return nil
		}
	}

	g.state = GateLocked
	g.respondent.Email = ""
	return apperror.ErrAccessDenied
}

// Restore replays a previously admitted respondent, re-checking the email
// against the current allow-list.
func (g *AccessGate) Restore(respondent model.Respondent) error {
	g.SetClientID(respondent.ClientID)
	if !g.survey.IsPrivate() {
		return nil
	}
	if respondent.Email == "" {
		return apperror.ErrAccessDenied
	}
	return g.Unlock(respondent.Email)
}

// RequireIdentity rejects a one-response survey when the respondent carries
// nothing to scope the already-responded check to.
func (g *AccessGate) RequireIdentity() error {
	if g.survey.LimitOneResponse && g.markerKey() == "" {
		return apperror.ErrAccessDenied
	}
	return nil
}

// CheckResponded performs the unlocked -> already-responded transition when
// the survey limits respondents to one response. It is a no-op otherwise.
func (g *AccessGate) CheckResponded(ctx context.Context) (GateState, error) {
	if g.state != GateUnlocked || !g.survey.LimitOneResponse {
		return g.state, nil
	}

	key := g.markerKey()
	if key == "" {
		return g.state, nil
	}

	// Marker lookups are a fast path; the stored records decide.
	if g.markers != nil {
		if found, err := g.markers.HasResponded(ctx, g.survey.ID, key); err == nil && found {
			g.state = GateAlreadyResponded
			return g.state, nil
		}
	}

	var (
		found bool
		err   error
	)
	if g.survey.IsPrivate() {
		found, err = g.responses.ExistsByEmail(ctx, g.survey.ID, g.respondent.Email)
	} else {
		found, err = g.responses.ExistsByClient(ctx, g.survey.ID, g.respondent.ClientID)
	}
	if err != nil {
		return g.state, fmt.Errorf("failed to check previous responses: %w", err)
	}
	if found {
		g.state = GateAlreadyResponded
	}
	return g.state, nil
}

// RequireAnswerable returns the error matching a state that blocks answering
func (g *AccessGate) RequireAnswerable() error {
	switch g.state {
	case GateLocked:
		return apperror.ErrAccessDenied
	case GateAlreadyResponded:
		return apperror.ErrAlreadyResponded
	}
	return nil
}

// MarkResponded records the marker after a successful submission
func (g *AccessGate) MarkResponded(ctx context.Context) error {
	key := g.markerKey()
	if g.markers == nil || key == "" {
		return nil
	}
	return g.markers.MarkResponded(ctx, g.survey.ID, key)
}

func (g *AccessGate) markerKey() string {
	if g.survey.IsPrivate() {
		if g.respondent.Email == "" {
			return ""
		}
		return "email:" + g.respondent.Email
	}
	if g.respondent.ClientID == "" {
		return ""
	}
	return "client:" + g.respondent.ClientID
}
