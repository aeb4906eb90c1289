package session

import (
	"encoding/json"
	"time"

	"nuanswers/domain/core"
	"nuanswers/domain/registration"
	"nuanswers/domain/tutoring"
	"nuanswers/domain/workspace"
	"nuanswers/ports"
)

// Phase is a step in the interaction lifecycle
type Phase string

const (
	PhaseUnregistered    Phase = "UNREGISTERED"
	PhaseRegistered      Phase = "REGISTERED"
	PhaseFeedbackPending Phase = "FEEDBACK_PENDING"
)

// Greeting opens every chat
const Greeting = "Hello! I'm NuAnswers. I'm here to help you understand concepts and work through problems. What would you like to work on today?"

// State is everything one user's session carries between requests
type State struct {
	ID        core.SessionID             `json:"id"`
	Phase     Phase                      `json:"phase"`
	User      *registration.Registration `json:"user,omitempty"`
	StartTime *time.Time                 `json:"start_time,omitempty"`
	Messages  []ports.Message            `json:"messages,omitempty"`
	Workspace workspace.Workspace        `json:"workspace"`

	// re-rendered with the registration form after a failed submit
	FormValues registration.Form  `json:"form_values"`
	FormErrors map[string]string  `json:"form_errors,omitempty"`
	FormMajor  registration.Major `json:"form_major,omitempty"`

	Notice string `json:"notice,omitempty"`
}

// New returns an empty unregistered session
func New(id core.SessionID) *State {
	return &State{ID: id, Phase: PhaseUnregistered}
}

// Registered reports whether chat, documents and hours are reachable
func (s *State) Registered() bool {
	return s.Phase == PhaseRegistered
}

// TakeNotice returns and clears the one-shot notice
func (s *State) TakeNotice() string {
	n := s.Notice
	s.Notice = ""
	return n
}

// Reset clears everything but the session ID
func (s *State) Reset() {
	*s = State{ID: s.ID, Phase: PhaseUnregistered}
}

// Marshal encodes the state for a SessionStore
func (s *State) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes stored state
func Unmarshal(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Phase == "" {
		s.Phase = PhaseUnregistered
	}
	return &s, nil
}

// View names the page a session should see
type View string

const (
	ViewRegistration View = "registration"
	ViewTutoring     View = "tutoring_notice"
	ViewChat         View = "chat"
	ViewFeedback     View = "feedback"
)

// ViewFor picks the page for the session's phase. A registered session sees
// the tutoring notice while the gate is in session.
func ViewFor(s *State, gate *tutoring.Gate) (View, tutoring.Diagnostic) {
	switch s.Phase {
	case PhaseFeedbackPending:
		return ViewFeedback, tutoring.Diagnostic{}
	case PhaseRegistered:
		if gate != nil {
			if in, diag := gate.InSession(); in {
				return ViewTutoring, diag
			}
		}
		return ViewChat, tutoring.Diagnostic{}
	default:
		return ViewRegistration, tutoring.Diagnostic{}
	}
}
