package session

import (
	"context"
	"testing"
	"time"

	"nuanswers/domain/core"
	"nuanswers/domain/tutoring"
	"nuanswers/domain/workspace"
	"nuanswers/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTripThroughRepository(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), time.Hour)
	ctx := context.Background()
	id := core.NewSessionID()

	st, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseUnregistered, st.Phase)

	st.Phase = PhaseRegistered
	st.Messages = []ports.Message{{Role: ports.RoleAssistant, Content: Greeting}}
	st.Workspace.Add(workspace.NewTextDocument("a.txt", []byte("a"), "alpha", time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, st))

	loaded, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, PhaseRegistered, loaded.Phase)
	assert.Equal(t, st.Messages, loaded.Messages)
	require.Equal(t, 1, loaded.Workspace.Len())
	assert.Equal(t, "alpha", loaded.Workspace.Documents[0].Content)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", []byte("v"), time.Minute))
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	got, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositoryCorruptStateStartsFresh(t *testing.T) {
	store := NewMemoryStore()
	repo := NewRepository(store, 0)
	id := core.NewSessionID()
	require.NoError(t, store.Save(context.Background(), id.String(), []byte("{broken"), 0))

	st, err := repo.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, PhaseUnregistered, st.Phase)
	assert.Equal(t, id, st.ID)
}

func TestViewFor(t *testing.T) {
	sched, err := tutoring.ParseSchedule("")
	require.NoError(t, err)
	closed := tutoring.NewGate(sched, time.UTC)

	st := New(core.NewSessionID())
	v, _ := ViewFor(st, closed)
	assert.Equal(t, ViewRegistration, v)

	st.Phase = PhaseRegistered
	v, _ = ViewFor(st, closed)
	assert.Equal(t, ViewChat, v)

	st.Phase = PhaseFeedbackPending
	v, _ = ViewFor(st, closed)
	assert.Equal(t, ViewFeedback, v)
}

func TestTakeNotice(t *testing.T) {
	st := New(core.NewSessionID())
	st.Notice = "saved"
	assert.Equal(t, "saved", st.TakeNotice())
	assert.Equal(t, "", st.TakeNotice())
}
