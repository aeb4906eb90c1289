package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nuanswers/domain/core"
	"nuanswers/domain/registration"
	"nuanswers/internal/errors"
	"nuanswers/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertRegistration(ctx context.Context, r *models.RegistrationRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockStore) InsertFeedback(ctx context.Context, f *models.FeedbackRecord) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockStore) InsertTopic(ctx context.Context, t *models.TopicRecord) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockStore) InsertCompletion(ctx context.Context, c *models.CompletionRecord) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockStore) ListRegistrations(ctx context.Context, f models.RegistrationFilter) ([]models.RegistrationRecord, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.RegistrationRecord), args.Error(1)
}

func (m *mockStore) ListFeedback(ctx context.Context) ([]models.FeedbackRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.FeedbackRecord), args.Error(1)
}

func (m *mockStore) ListTopics(ctx context.Context) ([]models.TopicRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TopicRecord), args.Error(1)
}

func (m *mockStore) ListCompletions(ctx context.Context) ([]models.CompletionRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CompletionRecord), args.Error(1)
}

func validForm() registration.Form {
	return registration.Form{
		FullName:       "Ada Lovelace",
		StudentID:      "1234567",
		Email:          "ada@student.fdu.edu",
		Grade:          "Junior",
		Campus:         "Florham",
		Major:          "Finance",
		CourseName:     "Corporate Finance",
		CourseID:       "FIN_3250_02",
		Professor:      "Prof. Babbage",
		ProfessorEmail: "babbage@fdu.edu",
	}
}

func newManager(store *mockStore) (*Manager, *core.FixedClock) {
	clock := &core.FixedClock{T: time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)}
	return NewManager(store, clock, nil), clock
}

func registered(t *testing.T, m *Manager, store *mockStore) *State {
	t.Helper()
	st := New(core.NewSessionID())
	store.On("InsertRegistration", mock.Anything, mock.MatchedBy(func(r *models.RegistrationRecord) bool {
		return r.UsageTimeMinutes == 0
	})).Return(nil).Once()
	require.NoError(t, m.Register(context.Background(), st, validForm()))
	return st
}

func TestRegisterPersistsZeroUsageAndGreets(t *testing.T) {
	store := &mockStore{}
	m, clock := newManager(store)

	st := registered(t, m, store)
	assert.Equal(t, PhaseRegistered, st.Phase)
	assert.True(t, st.Registered())
	require.NotNil(t, st.StartTime)
	assert.True(t, st.StartTime.Equal(clock.Now()))
	require.Len(t, st.Messages, 1)
	assert.Equal(t, Greeting, st.Messages[0].Content)
	store.AssertExpectations(t)

	err := m.Register(context.Background(), st, validForm())
	assert.Equal(t, errors.CodeInvalidState, errors.GetCode(err))
}

func TestRegisterValidationFailureStaysUnregistered(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := New(core.NewSessionID())

	form := validForm()
	form.StudentID = "123"
	err := m.Register(context.Background(), st, form)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.Equal(t, PhaseUnregistered, st.Phase)
	assert.Equal(t, registration.MsgStudentID, st.FormErrors["student_id"])
	assert.Equal(t, "123", st.FormValues.StudentID, "values are kept for re-render")
	store.AssertNotCalled(t, "InsertRegistration", mock.Anything, mock.Anything)
}

func TestRegisterPersistenceFailureStaysUnregistered(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := New(core.NewSessionID())

	store.On("InsertRegistration", mock.Anything, mock.Anything).
		Return(errors.Persistence("insert registration", fmt.Errorf("connection refused"))).Once()

	err := m.Register(context.Background(), st, validForm())
	require.Error(t, err)
	assert.Equal(t, errors.CodePersistence, errors.GetCode(err))
	assert.Equal(t, PhaseUnregistered, st.Phase)
	assert.Nil(t, st.StartTime)
}

func TestLogoutPersistsNothing(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := registered(t, m, store)

	require.NoError(t, m.Logout(st))
	assert.Equal(t, PhaseFeedbackPending, st.Phase)
	assert.False(t, st.Registered())
	store.AssertNumberOfCalls(t, "InsertRegistration", 1)

	assert.Equal(t, errors.CodeInvalidState, errors.GetCode(m.Logout(st)))
}

func TestSubmitFeedbackRequiresTopic(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := registered(t, m, store)
	require.NoError(t, m.Logout(st))

	_, err := m.SubmitFeedback(context.Background(), st, Feedback{Rating: 3, Topic: "  ", Difficulty: 3})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
	assert.Equal(t, PhaseFeedbackPending, st.Phase)

	_, err = m.SubmitFeedback(context.Background(), st, Feedback{Rating: 6, Topic: "NPV", Difficulty: 3})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestSubmitFeedbackPersistsAndResets(t *testing.T) {
	store := &mockStore{}
	m, clock := newManager(store)
	st := registered(t, m, store)
	id := st.ID

	clock.Advance(5*time.Minute + 30*time.Second)
	require.NoError(t, m.Logout(st))

	store.On("InsertFeedback", mock.Anything, mock.MatchedBy(func(f *models.FeedbackRecord) bool {
		return f.Topic == "NPV" && f.Rating == 4 && f.Difficulty == 2 && f.StudentID == "1234567" && f.CourseID == "FIN_3250_02"
	})).Return(nil).Once()
	store.On("InsertTopic", mock.Anything, mock.MatchedBy(func(tp *models.TopicRecord) bool {
		return tp.Topic == "NPV" && tp.Difficulty == 2
	})).Return(nil).Once()
	store.On("InsertCompletion", mock.Anything, mock.MatchedBy(func(c *models.CompletionRecord) bool {
		return c.Completed
	})).Return(nil).Once()
	store.On("InsertRegistration", mock.Anything, mock.MatchedBy(func(r *models.RegistrationRecord) bool {
		return r.UsageTimeMinutes > 5.4999 && r.UsageTimeMinutes < 5.5001
	})).Return(nil).Once()

	usage, err := m.SubmitFeedback(context.Background(), st, Feedback{Rating: 4, Topic: " NPV ", Difficulty: 2})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, usage, 1e-9)

	assert.Equal(t, PhaseUnregistered, st.Phase)
	assert.Equal(t, id, st.ID)
	assert.Nil(t, st.User)
	assert.Nil(t, st.StartTime)
	assert.Empty(t, st.Messages)
	assert.Zero(t, st.Workspace.Len())
	store.AssertExpectations(t)
}

func TestSkipFeedbackPersistsOnlyUsage(t *testing.T) {
	store := &mockStore{}
	m, clock := newManager(store)
	st := registered(t, m, store)

	clock.Advance(90 * time.Second)
	require.NoError(t, m.Logout(st))

	store.On("InsertRegistration", mock.Anything, mock.MatchedBy(func(r *models.RegistrationRecord) bool {
		return r.UsageTimeMinutes == 1.5
	})).Return(nil).Once()

	usage, err := m.SkipFeedback(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 1.5, usage)
	assert.Equal(t, PhaseUnregistered, st.Phase)

	store.AssertNotCalled(t, "InsertFeedback", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertTopic", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertCompletion", mock.Anything, mock.Anything)
}

func TestFinalUsageFailureStillResets(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := registered(t, m, store)
	require.NoError(t, m.Logout(st))

	store.On("InsertRegistration", mock.Anything, mock.Anything).
		Return(errors.Persistence("insert registration", fmt.Errorf("timeout"))).Once()

	_, err := m.SkipFeedback(context.Background(), st)
	assert.Equal(t, errors.CodePersistence, errors.GetCode(err))
	assert.Equal(t, PhaseUnregistered, st.Phase)
}

func TestSkipRequiresPendingFeedback(t *testing.T) {
	store := &mockStore{}
	m, _ := newManager(store)
	st := New(core.NewSessionID())

	_, err := m.SkipFeedback(context.Background(), st)
	assert.Equal(t, errors.CodeInvalidState, errors.GetCode(err))
}
