package ui

import (
	"net/http"

	"nuanswers/domain/registration"
	"nuanswers/domain/tutoring"
	"nuanswers/internal/errors"
	"nuanswers/internal/session"

	"github.com/gin-gonic/gin"
)

// pageData feeds index.html
type pageData struct {
	View        session.View
	Notice      string
	Error       string
	Diagnostic  tutoring.Diagnostic
	Schema      registration.Variant
	Majors      []registration.Major
	Values      map[string]string
	FieldErrors map[string]string
	Messages    []messageView
	Workspace   workspaceView
	Accept      string
	Feedback    session.Feedback
	AIMissing   string
}

func (s *Server) page(st *session.State) pageData {
	view, diag := session.ViewFor(st, s.deps.Gate)
	data := pageData{
		View:        view,
		Notice:      st.TakeNotice(),
		Diagnostic:  diag,
		Schema:      registration.SchemaFor(st.FormMajor),
		Majors:      registration.Majors,
		Values:      formValues(st.FormValues),
		FieldErrors: st.FormErrors,
		Feedback:    session.Feedback{Rating: 3, Difficulty: 3},
	}
	if view == session.ViewChat {
		data.Messages = messageViews(st)
		data.Workspace = newWorkspaceView(&st.Workspace, st.Workspace.Query)
		data.Accept = s.deps.Documents.Accept()
		if s.deps.Tutor == nil {
			data.AIMissing = errors.UserMessage(s.deps.Config.RequireAI())
		}
	}
	return data
}

func formValues(f registration.Form) map[string]string {
	return map[string]string{
		"full_name":       f.FullName,
		"student_id":      f.StudentID,
		"email":           f.Email,
		"grade":           f.Grade,
		"campus":          f.Campus,
		"major":           f.Major,
		"course_name":     f.CourseName,
		"course_id":       f.CourseID,
		"professor":       f.Professor,
		"professor_email": f.ProfessorEmail,
	}
}

// handleIndex renders the page for the session's current phase.
// ?major= switches the registration form variant.
func (s *Server) handleIndex(c *gin.Context) {
	st := sessionState(c)
	if m := registration.Major(c.Query("major")); m != "" && !st.Registered() {
		st.FormMajor = registration.SchemaFor(m).Major
	}
	s.renderTemplate(c, http.StatusOK, "index.html", s.page(st))
}

func (s *Server) handleRegister(c *gin.Context) {
	st := sessionState(c)

	var form registration.Form
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errors.InvalidInput("could not read registration form"))
		return
	}

	if err := s.deps.Lifecycle.Register(c.Request.Context(), st, form); err != nil {
		s.logger.Warn("[handleRegister] %v", err)
		if wantsHTML(c) {
			data := s.page(st)
			data.Error = errors.UserMessage(err)
			s.renderTemplate(c, statusFor(err), "index.html", data)
			return
		}
		s.respondError(c, err)
		return
	}

	s.logger.Info("[handleRegister] registered %s for %s", st.User.StudentID, st.User.CourseID)
	st.Notice = "Registration successful!"
	s.done(c, gin.H{"phase": st.Phase, "greeting": session.Greeting})
}

func (s *Server) handleLogout(c *gin.Context) {
	st := sessionState(c)
	if err := s.deps.Lifecycle.Logout(st); err != nil {
		s.respondError(c, err)
		return
	}
	s.done(c, gin.H{"phase": st.Phase})
}

func (s *Server) handleFeedback(c *gin.Context) {
	st := sessionState(c)

	var fb session.Feedback
	if err := c.ShouldBind(&fb); err != nil {
		s.respondError(c, errors.InvalidInput("could not read feedback form"))
		return
	}

	usage, err := s.deps.Lifecycle.SubmitFeedback(c.Request.Context(), st, fb)
	if err != nil && st.Phase == session.PhaseFeedbackPending {
		// nothing was finished; the form is shown again
		if wantsHTML(c) {
			data := s.page(st)
			data.Error = errors.UserMessage(err)
			data.Feedback = fb
			s.renderTemplate(c, statusFor(err), "index.html", data)
			return
		}
		s.respondError(c, err)
		return
	}
	s.finished(c, st, usage, err, "Thank you for your feedback!")
}

func (s *Server) handleSkipFeedback(c *gin.Context) {
	st := sessionState(c)
	usage, err := s.deps.Lifecycle.SkipFeedback(c.Request.Context(), st)
	if err != nil && st.Phase == session.PhaseFeedbackPending {
		s.respondError(c, err)
		return
	}
	s.finished(c, st, usage, err, "")
}

// finished reports a reset session. A failed usage write still ends the session.
func (s *Server) finished(c *gin.Context, st *session.State, usage float64, err error, notice string) {
	if err != nil {
		st.Notice = errors.UserMessage(err)
	} else {
		st.Notice = notice
	}
	body := gin.H{"phase": st.Phase, "usage_time_minutes": usage}
	if err != nil {
		body["warning"] = st.Notice
	}
	s.done(c, body)
}

// done redirects browsers back to the page and answers scripts with JSON
func (s *Server) done(c *gin.Context, body gin.H) {
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleHours(c *gin.Context) {
	if s.deps.Gate == nil {
		s.respondError(c, errors.ConfigInvalid("tutoring schedule not configured"))
		return
	}
	in, diag := s.deps.Gate.InSession()
	c.JSON(http.StatusOK, gin.H{
		"in_session": in,
		"schedule":   s.deps.Gate.Schedule().String(),
		"diagnostic": diag,
		"notice":     noticeIf(in),
	})
}

func noticeIf(in bool) string {
	if in {
		return TutoringNotice
	}
	return ""
}
