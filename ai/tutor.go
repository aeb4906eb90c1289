package ai

import (
	"context"
	"strings"

	"nuanswers/domain/workspace"
	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/internal/session"
	"nuanswers/ports"
)

// Tutor assembles the tutoring conversation and streams the model's reply
type Tutor struct {
	streamer     ports.TextStreamer
	systemPrompt string
	logger       *internal.Logger
}

// NewTutor creates a tutor using the tutoring-policy system prompt
func NewTutor(streamer ports.TextStreamer, prompts *PromptManager, logger *internal.Logger) (*Tutor, error) {
	if prompts == nil {
		prompts = NewPromptManager("")
	}
	system, err := prompts.LoadPrompt(PromptTutorSystem)
	if err != nil {
		return nil, errors.Wrap(err, "load tutor prompt")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Tutor{streamer: streamer, systemPrompt: system, logger: logger}, nil
}

// BuildMessages returns the policy prompt, the document context (only when the
// workspace has documents) and the history, in that order
func (t *Tutor) BuildMessages(ws *workspace.Workspace, history []ports.Message) []ports.Message {
	msgs := make([]ports.Message, 0, len(history)+2)
	msgs = append(msgs, ports.Message{Role: ports.RoleSystem, Content: t.systemPrompt})
	if ctxBlock := ws.ContextBlock(); ctxBlock != "" {
		msgs = append(msgs, ports.Message{Role: ports.RoleSystem, Content: ctxBlock})
	}
	return append(msgs, history...)
}

// Respond appends the student's message, streams a reply through onDelta, and
// appends the reply once the stream completes. A failed stream leaves no
// assistant message behind.
func (t *Tutor) Respond(ctx context.Context, st *session.State, text string, onDelta func(string) error) (string, error) {
	if !st.Registered() {
		return "", errors.InvalidState("register before chatting")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.ValidationError("message cannot be empty")
	}

	st.Messages = append(st.Messages, ports.Message{Role: ports.RoleUser, Content: text})

	reply, err := t.streamer.StreamChat(ctx, t.BuildMessages(&st.Workspace, st.Messages), onDelta)
	if err != nil {
		t.logger.Warn("[Tutor] stream failed for session %s: %v", st.ID, err)
		if errors.IsAppError(err) {
			return "", err
		}
		return "", errors.ExternalServiceError("text generation", err)
	}

	st.Messages = append(st.Messages, ports.Message{Role: ports.RoleAssistant, Content: reply})
	return reply, nil
}
