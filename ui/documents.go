package ui

import (
	"html/template"
	"io"
	"net/http"

	"nuanswers/app"
	"nuanswers/domain/core"
	"nuanswers/domain/workspace"
	"nuanswers/internal/errors"

	"github.com/gin-gonic/gin"
)

// NoMatches is shown when a search filters out every document
const NoMatches = "No documents match your search query."

type documentView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Kind          string        `json:"kind"`
	Size          int64         `json:"size"`
	Preview       string        `json:"preview"`
	PreviewHTML   template.HTML `json:"preview_html"`
	Highlighted   bool          `json:"highlighted"`
	PendingDelete bool          `json:"pending_delete"`
}

type workspaceView struct {
	Query         string         `json:"query"`
	ShowReorder   bool           `json:"show_reorder"`
	PendingDelete string         `json:"pending_delete,omitempty"`
	PendingName   string         `json:"pending_name,omitempty"`
	Total         int            `json:"total"`
	Order         []documentView `json:"order"`
	Matches       []documentView `json:"matches"`
	Empty         string         `json:"empty,omitempty"`
}

func newWorkspaceView(ws *workspace.Workspace, query string) workspaceView {
	v := workspaceView{
		Query:       query,
		ShowReorder: ws.ShowReorder,
		Total:       ws.Len(),
		Order:       make([]documentView, 0, ws.Len()),
	}
	if ws.Delete.IsPending() {
		v.PendingDelete = ws.Delete.Pending.String()
		if d, ok := ws.Get(ws.Delete.Pending); ok {
			v.PendingName = d.Name
		}
	}
	for _, d := range ws.Documents {
		v.Order = append(v.Order, documentView{ID: d.ID.String(), Name: d.Name, Kind: string(d.Kind), Size: d.Size})
	}

	matches := ws.Search(query)
	v.Matches = make([]documentView, 0, len(matches))
	for _, m := range matches {
		dv := documentView{
			ID:            m.Document.ID.String(),
			Name:          m.Document.Name,
			Kind:          string(m.Document.Kind),
			Size:          m.Document.Size,
			Preview:       m.Preview,
			Highlighted:   m.Highlighted,
			PendingDelete: ws.Delete.Pending == m.Document.ID,
		}
		// highlighted previews carry ** markers; plain previews stay literal text
		if m.Highlighted {
			dv.PreviewHTML = renderMarkdown(m.Preview)
		} else {
			dv.PreviewHTML = template.HTML("<pre>" + template.HTMLEscapeString(m.Preview) + "</pre>")
		}
		v.Matches = append(v.Matches, dv)
	}
	if ws.Len() > 0 && len(v.Matches) == 0 {
		v.Empty = NoMatches
	}
	return v
}

type uploadResultView struct {
	Name      string `json:"name"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// handleUpload ingests every file in the "files" field
func (s *Server) handleUpload(c *gin.Context) {
	st := sessionState(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.Config.Server.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			s.respondError(c, err)
			return
		}
		s.respondError(c, errors.InvalidInput("expected a multipart upload"))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		s.respondError(c, errors.InvalidInput("no files uploaded"))
		return
	}

	uploads := make([]app.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.respondError(c, errors.Wrapf(err, "read upload %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.respondError(c, errors.Wrapf(err, "read upload %s", fh.Filename))
			return
		}
		uploads = append(uploads, app.Upload{Name: fh.Filename, Data: data})
	}

	results := s.deps.Documents.Ingest(c.Request.Context(), &st.Workspace, uploads)
	views := make([]uploadResultView, len(results))
	for i, r := range results {
		views[i] = uploadResultView{Name: r.Name, Message: r.Message(), Duplicate: r.Duplicate}
		if r.Err != nil {
			views[i].Error = errors.UserMessage(r.Err)
			views[i].Code = errors.GetCode(r.Err)
		}
	}

	if wantsHTML(c) {
		for _, v := range views {
			if v.Message != "" {
				st.Notice = joinNotice(st.Notice, v.Message)
			}
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": views, "workspace": newWorkspaceView(&st.Workspace, st.Workspace.Query)})
}

func joinNotice(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

// handleListDocuments searches with ?q=, falling back to the saved query
func (s *Server) handleListDocuments(c *gin.Context) {
	st := sessionState(c)
	query, ok := c.GetQuery("q")
	if !ok {
		query = st.Workspace.Query
	}
	c.JSON(http.StatusOK, newWorkspaceView(&st.Workspace, query))
}

func (s *Server) handleSearch(c *gin.Context) {
	st := sessionState(c)
	st.Workspace.Query = c.PostForm("q")
	s.workspaceDone(c)
}

func (s *Server) handleToggleReorder(c *gin.Context) {
	st := sessionState(c)
	st.Workspace.ShowReorder = !st.Workspace.ShowReorder
	s.workspaceDone(c)
}

// documentParam reads the :id route parameter
func documentParam(c *gin.Context) (core.DocumentID, error) {
	id, err := core.ParseDocumentID(c.Param("id"))
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return id, nil
}

func (s *Server) handleMove(c *gin.Context) {
	st := sessionState(c)
	id, err := documentParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	dir, err := workspace.ParseDirection(c.Query("dir"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := st.Workspace.Move(id, dir); err != nil {
		s.respondError(c, err)
		return
	}
	s.workspaceDone(c)
}

func (s *Server) handleRequestDelete(c *gin.Context) {
	st := sessionState(c)
	id, err := documentParam(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := st.Workspace.RequestDelete(id); err != nil {
		s.respondError(c, err)
		return
	}
	s.workspaceDone(c)
}

func (s *Server) handleConfirmDelete(c *gin.Context) {
	st := sessionState(c)
	doc, err := st.Workspace.ConfirmDelete()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.sessionLogger(st).Debug("[handleConfirmDelete] removed %s", doc.Name)
	s.workspaceDone(c)
}

func (s *Server) handleCancelDelete(c *gin.Context) {
	sessionState(c).Workspace.CancelDelete()
	s.workspaceDone(c)
}

func (s *Server) workspaceDone(c *gin.Context) {
	st := sessionState(c)
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, newWorkspaceView(&st.Workspace, st.Workspace.Query))
}
