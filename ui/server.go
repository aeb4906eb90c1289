package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"nuanswers/ai"
	"nuanswers/app"
	"nuanswers/domain/tutoring"
	"nuanswers/internal"
	"nuanswers/internal/config"
	"nuanswers/internal/session"
	"nuanswers/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Deps are the services the web server drives
type Deps struct {
	Config    *config.Config
	Sessions  *session.Repository
	Lifecycle *session.Manager
	Gate      *tutoring.Gate
	Documents *app.DocumentService
	Store     ports.RecordStore
	Logger    *internal.Logger

	// Tutor is nil when the text-generation credential is missing
	Tutor *ai.Tutor
}

// Server is the student-facing web application with the admin dashboard mounted under /admin
type Server struct {
	router    *gin.Engine
	deps      Deps
	templates *template.Template
	logger    *internal.Logger
}

// NewServer parses templates and registers every route
func NewServer(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}

	templates, err := template.New("").Funcs(funcMap()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = deps.Config.Server.MaxUploadBytes

	s := &Server{
		router:    router,
		deps:      deps,
		templates: templates,
		logger:    deps.Logger,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"add":      func(a, b int) int { return a + b },
		"pct":      func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"fixed1":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"stamp":    func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") },
	}
}

func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	admin := NewAdminRouter(AdminConfig{
		Store:     s.deps.Store,
		Password:  s.deps.Config.Admin.Password,
		Location:  s.location(),
		Templates: s.templates,
		Logger:    s.logger,
	})
	s.router.Any("/admin/*path", gin.WrapH(admin))

	web := s.router.Group("/", s.sessionMiddleware())
	web.GET("/", s.handleIndex)
	web.POST("/register", s.handleRegister)
	web.POST("/logout", s.handleLogout)
	web.POST("/feedback", s.handleFeedback)
	web.POST("/feedback/skip", s.handleSkipFeedback)
	web.GET("/hours", s.requireRegistered(), s.handleHours)

	tutor := web.Group("/", s.requireRegistered(), s.requireOutsideHours())
	tutor.POST("/chat", s.handleChat)
	tutor.GET("/chat/messages", s.handleMessages)

	tutor.POST("/documents", s.handleUpload)
	tutor.GET("/documents", s.handleListDocuments)
	tutor.POST("/documents/search", s.handleSearch)
	tutor.POST("/documents/reorder/toggle", s.handleToggleReorder)
	tutor.POST("/documents/delete/confirm", s.handleConfirmDelete)
	tutor.POST("/documents/delete/cancel", s.handleCancelDelete)
	tutor.POST("/documents/:id/move", s.handleMove)
	tutor.POST("/documents/:id/delete", s.handleRequestDelete)
	return nil
}

func (s *Server) location() *time.Location {
	if s.deps.Gate != nil {
		return s.deps.Gate.Location()
	}
	return time.UTC
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting NuAnswers on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("Shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := s.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		s.logger.Error("[renderTemplate] %s: %v", name, err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
