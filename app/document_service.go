package app

import (
	"context"
	"fmt"
	"strings"

	"nuanswers/ai"
	"nuanswers/domain/core"
	"nuanswers/domain/workspace"
	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/ports"
)

// Upload is one file received from the browser
type Upload struct {
	Name string
	Data []byte
}

// UploadResult reports what happened to a single upload
type UploadResult struct {
	Name      string
	Document  *workspace.Document
	Duplicate bool
	Err       error
}

// Message returns the user-facing line for this result
func (r UploadResult) Message() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Error processing %s: %s", r.Name, errors.UserMessage(r.Err))
	case r.Duplicate:
		return ""
	case r.Document != nil && r.Document.IsImage():
		return fmt.Sprintf("Successfully processed image %s", r.Name)
	default:
		return fmt.Sprintf("Successfully processed %s", r.Name)
	}
}

// DocumentService adds uploads to a session workspace, extracting text from
// documents and describing images
type DocumentService struct {
	extractor   ports.TextExtractor
	analyzer    ports.ImageAnalyzer
	instruction string
	clock       core.Clock
	logger      *internal.Logger
}

// NewDocumentService creates the ingestion service. analyzer may be nil, in
// which case images are stored with a placeholder.
func NewDocumentService(extractor ports.TextExtractor, analyzer ports.ImageAnalyzer, prompts *ai.PromptManager, clock core.Clock, logger *internal.Logger) (*DocumentService, error) {
	if prompts == nil {
		prompts = ai.NewPromptManager("")
	}
	instruction, err := prompts.LoadPrompt(ai.PromptImageAnalysis)
	if err != nil {
		return nil, errors.Wrap(err, "load image analysis prompt")
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DocumentService{
		extractor:   extractor,
		analyzer:    analyzer,
		instruction: instruction,
		clock:       clock,
		logger:      logger,
	}, nil
}

// Ingest processes uploads in order. A failing file does not stop the rest.
func (s *DocumentService) Ingest(ctx context.Context, ws *workspace.Workspace, uploads []Upload) []UploadResult {
	results := make([]UploadResult, 0, len(uploads))
	for _, u := range uploads {
		results = append(results, s.ingest(ctx, ws, u))
	}
	return results
}

func (s *DocumentService) ingest(ctx context.Context, ws *workspace.Workspace, u Upload) UploadResult {
	res := UploadResult{Name: u.Name}

	// already present: skipped without a message
	if ws.Contains(core.Fingerprint(u.Name, u.Data)) {
		res.Duplicate = true
		return res
	}

	var doc workspace.Document
	if workspace.IsImageFile(u.Name) {
		doc = workspace.NewImageDocument(u.Name, u.Data, s.analyze(ctx, u), s.clock.Now())
	} else {
		text, err := s.extractor.Extract(u.Name, u.Data)
		if err != nil {
			s.logger.Warn("[DocumentService] %s: %v", u.Name, err)
			res.Err = err
			return res
		}
		doc = workspace.NewTextDocument(u.Name, u.Data, text, s.clock.Now())
	}

	ws.Add(doc)
	res.Document = &doc
	s.logger.Debug("[DocumentService] added %s (%s, %d bytes)", doc.Name, doc.Kind, doc.Size)
	return res
}

// analyze returns an empty string when analysis is unavailable
func (s *DocumentService) analyze(ctx context.Context, u Upload) string {
	if s.analyzer == nil {
		return ""
	}
	analysis, err := s.analyzer.AnalyzeImage(ctx, u.Data, mimeType(u.Name), s.instruction)
	if err != nil {
		s.logger.Warn("[DocumentService] image analysis failed for %s: %v", u.Name, err)
		return ""
	}
	return analysis
}

// Accept lists every upload extension the service handles, comma-separated
// for a file input's accept attribute
func (s *DocumentService) Accept() string {
	exts := append(s.extractor.Extensions(), workspace.ImageExtensions...)
	return strings.Join(exts, ",")
}

func mimeType(name string) string {
	if workspace.Ext(name) == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
