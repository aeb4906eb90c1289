package session

import (
	"context"
	"strings"

	"nuanswers/domain/core"
	"nuanswers/domain/registration"
	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/models"
	"nuanswers/ports"
)

// Feedback is the optional post-session survey
type Feedback struct {
	Rating     int    `form:"rating" json:"rating"`
	Topic      string `form:"topic" json:"topic"`
	Difficulty int    `form:"difficulty" json:"difficulty"`
}

// Manager drives State through the lifecycle and persists what each step produces
type Manager struct {
	store  ports.RecordStore
	clock  core.Clock
	logger *internal.Logger
}

// NewManager creates a lifecycle manager
func NewManager(store ports.RecordStore, clock core.Clock, logger *internal.Logger) *Manager {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Manager{store: store, clock: clock, logger: logger}
}

// Register validates the form and persists the registration with zero usage.
// Validation or persistence failure leaves the session unregistered.
func (m *Manager) Register(ctx context.Context, st *State, form registration.Form) error {
	if st.Phase != PhaseUnregistered {
		return errors.InvalidState("session is already registered")
	}

	st.FormValues = form
	st.FormErrors = nil
	if form.Major != "" {
		st.FormMajor = registration.Major(form.Major)
	}

	now := m.clock.Now()
	reg, err := registration.Build(form, now)
	if err != nil {
		st.FormErrors = errors.FieldErrors(err)
		return err
	}

	rec := recordFor(reg, 0)
	if err := m.store.InsertRegistration(ctx, &rec); err != nil {
		m.logger.Error("[Register] failed to save registration for %s: %v", reg.StudentID, err)
		return errors.Wrap(err, "Registration failed. Please try again or contact support.")
	}

	st.Phase = PhaseRegistered
	st.User = &reg
	st.StartTime = &now
	st.Messages = []ports.Message{{Role: ports.RoleAssistant, Content: Greeting}}
	st.FormValues = registration.Form{}
	m.logger.Info("[Register] session %s registered student %s (%s)", st.ID, reg.StudentID, reg.CourseID)
	return nil
}

// Logout moves a registered session to the feedback step. Nothing is persisted yet.
func (m *Manager) Logout(st *State) error {
	if st.Phase != PhaseRegistered {
		return errors.InvalidState("only a registered session can log out")
	}
	st.Phase = PhaseFeedbackPending
	return nil
}

// SubmitFeedback records the survey, topic and completion, then ends the session.
// It returns the usage minutes written.
func (m *Manager) SubmitFeedback(ctx context.Context, st *State, fb Feedback) (float64, error) {
	if st.Phase != PhaseFeedbackPending {
		return 0, errors.InvalidState("no feedback is pending")
	}
	fb.Topic = strings.TrimSpace(fb.Topic)
	if fb.Topic == "" {
		return 0, errors.ValidationFields("Please enter the topics discussed.", map[string]string{"topic": "Please enter the topics discussed."})
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return 0, errors.ValidationFields("Rating must be between 1 and 5.", map[string]string{"rating": "Rating must be between 1 and 5."})
	}
	if fb.Difficulty < 1 || fb.Difficulty > 5 {
		return 0, errors.ValidationFields("Difficulty must be between 1 and 5.", map[string]string{"difficulty": "Difficulty must be between 1 and 5."})
	}

	now := m.clock.Now()
	studentID, courseID := st.User.StudentID, st.User.CourseID

	if err := m.store.InsertFeedback(ctx, &models.FeedbackRecord{
		StudentID: studentID, CourseID: courseID, Rating: fb.Rating, Topic: fb.Topic, Difficulty: fb.Difficulty, Timestamp: now,
	}); err != nil {
		return 0, errors.Wrap(err, "failed to save feedback")
	}
	if err := m.store.InsertTopic(ctx, &models.TopicRecord{
		StudentID: studentID, CourseID: courseID, Topic: fb.Topic, Difficulty: fb.Difficulty, Timestamp: now,
	}); err != nil {
		return 0, errors.Wrap(err, "failed to save topic")
	}
	if err := m.store.InsertCompletion(ctx, &models.CompletionRecord{
		StudentID: studentID, CourseID: courseID, Completed: true, Timestamp: now,
	}); err != nil {
		return 0, errors.Wrap(err, "failed to save completion")
	}

	return m.finish(ctx, st)
}

// SkipFeedback ends the session without recording a survey
func (m *Manager) SkipFeedback(ctx context.Context, st *State) (float64, error) {
	if st.Phase != PhaseFeedbackPending {
		return 0, errors.InvalidState("no feedback is pending")
	}
	return m.finish(ctx, st)
}

// finish writes the final usage row and clears the session. The session is
// cleared even if the write fails; the error is still returned for display.
func (m *Manager) finish(ctx context.Context, st *State) (float64, error) {
	var usage float64
	if st.StartTime != nil {
		usage = core.MinutesBetween(*st.StartTime, m.clock.Now())
	}

	var err error
	if st.User != nil {
		rec := recordFor(*st.User, usage)
		rec.Timestamp = m.clock.Now().UTC()
		if err = m.store.InsertRegistration(ctx, &rec); err != nil {
			m.logger.Error("[finish] failed to save final usage for %s: %v", st.User.StudentID, err)
			err = errors.Wrap(err, "failed to save session usage")
		} else {
			m.logger.Info("[finish] session %s ended after %.2f minutes", st.ID, usage)
		}
	}

	st.Reset()
	return usage, err
}

func recordFor(reg registration.Registration, usage float64) models.RegistrationRecord {
	return models.RegistrationRecord{
		Timestamp:        reg.Timestamp,
		FullName:         reg.FullName,
		StudentID:        reg.StudentID,
		Email:            reg.Email,
		Grade:            reg.Grade,
		Campus:           reg.Campus,
		Major:            reg.Major,
		CourseName:       reg.CourseName,
		CourseID:         reg.CourseID,
		Professor:        reg.Professor,
		ProfessorEmail:   reg.ProfessorEmail,
		UsageTimeMinutes: usage,
	}
}
