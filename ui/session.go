package ui

import (
	"context"
	"net/http"

	"nuanswers/domain/core"
	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/internal/session"

	"github.com/gin-gonic/gin"
)

const stateKey = "nuanswers.state"

// TutoringNotice replaces the chat while in-person tutoring is running
const TutoringNotice = "In-person tutoring is currently available! Please visit the in-person tutoring session instead of using the bot. The bot will be available after the tutoring session ends."

// sessionMiddleware loads the caller's state before the handler and saves it after
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	cfg := s.deps.Config.Session
	return func(c *gin.Context) {
		raw, _ := c.Cookie(cfg.CookieName)
		id, err := core.ParseSessionID(raw)
		if err != nil {
			id = core.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, id.String(), int(cfg.TTL.Seconds()), "/", "", c.Request.TLS != nil, true)
		}

		st, err := s.deps.Sessions.Load(c.Request.Context(), id)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Set(stateKey, st)

		c.Next()

		// saved even when the client has gone away
		ctx := context.WithoutCancel(c.Request.Context())
		if err := s.deps.Sessions.Save(ctx, st); err != nil {
			s.sessionLogger(st).Error("[sessionMiddleware] failed to save session: %v", err)
		}
	}
}

func sessionState(c *gin.Context) *session.State {
	return c.MustGet(stateKey).(*session.State)
}

// sessionLogger tags entries with the session ID
func (s *Server) sessionLogger(st *session.State) *internal.Logger {
	return s.logger.With("session", st.ID.String())
}

// requireRegistered rejects sessions that have not registered
func (s *Server) requireRegistered() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionState(c).Registered() {
			c.Next()
			return
		}
		if wantsHTML(c) {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		s.respondError(c, errors.InvalidState("please register before using the tutor"))
	}
}

// requireOutsideHours blocks the tutor while in-person tutoring is in session.
// The session itself is left untouched.
func (s *Server) requireOutsideHours() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.deps.Gate == nil {
			c.Next()
			return
		}
		in, diag := s.deps.Gate.InSession()
		if !in {
			c.Next()
			return
		}
		if wantsHTML(c) {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusLocked, gin.H{
			"error":      TutoringNotice,
			"code":       "TUTORING_IN_SESSION",
			"diagnostic": diag,
		})
	}
}
