package ui

import (
	"html/template"
	"net/http"
	"strings"

	"nuanswers/internal/errors"
	"nuanswers/internal/session"

	"github.com/gin-gonic/gin"
)

type messageView struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	HTML    template.HTML `json:"html"`
}

func messageViews(st *session.State) []messageView {
	out := make([]messageView, len(st.Messages))
	for i, m := range st.Messages {
		out[i] = messageView{Role: m.Role, Content: m.Content, HTML: renderMarkdown(m.Content)}
	}
	return out
}

type chatRequest struct {
	Message string `form:"message" json:"message"`
}

// handleChat streams the tutor's reply as server-sent events:
// "delta" per token chunk, then "done" with the rendered reply or "error".
func (s *Server) handleChat(c *gin.Context) {
	st := sessionState(c)
	if s.deps.Tutor == nil {
		s.respondError(c, s.deps.Config.RequireAI())
		return
	}

	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		s.respondError(c, errors.InvalidInput("could not read chat message"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(c, errors.ValidationError("message cannot be empty"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	reply, err := s.deps.Tutor.Respond(ctx, st, req.Message, func(delta string) error {
		c.SSEvent("delta", delta)
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		s.sessionLogger(st).Warn("[handleChat] %v", err)
		c.SSEvent("error", gin.H{"error": errors.UserMessage(err), "code": errors.GetCode(err)})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{"content": reply, "html": string(renderMarkdown(reply))})
	c.Writer.Flush()
}

func (s *Server) handleMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": messageViews(sessionState(c))})
}
