package workspace

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"nuanswers/domain/core"
)

// Kind classifies where a document's content came from
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ImageExtensions are routed to image analysis instead of text extraction
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// Document is one uploaded, extracted file
type Document struct {
	ID            core.DocumentID `json:"id"`
	Name          string          `json:"name"`
	Content       string          `json:"content"`
	Kind          Kind            `json:"kind"`
	ImageAnalysis string          `json:"image_analysis,omitempty"`
	Fingerprint   core.Hash       `json:"fingerprint"`
	Size          int64           `json:"size"`
	UploadedAt    time.Time       `json:"uploaded_at"`
}

// IsImage reports whether the document was produced by image analysis
func (d Document) IsImage() bool { return d.Kind == KindImage }

// Ext returns the lower-cased file extension including the dot
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsImageFile reports whether name has an image extension
func IsImageFile(name string) bool {
	ext := Ext(name)
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// NewTextDocument builds a document from extracted text
func NewTextDocument(name string, data []byte, text string, now time.Time) Document {
	return Document{
		ID:          core.NewDocumentID(),
		Name:        name,
		Content:     text,
		Kind:        KindText,
		Fingerprint: core.Fingerprint(name, data),
		Size:        int64(len(data)),
		UploadedAt:  now,
	}
}

// NewImageDocument builds a document from an image analysis. An empty analysis
// stores a placeholder naming the file.
func NewImageDocument(name string, data []byte, analysis string, now time.Time) Document {
	content := fmt.Sprintf("[Image File: %s]", name)
	if analysis != "" {
		content = fmt.Sprintf("[Image Analysis: %s]", analysis)
	}
	return Document{
		ID:            core.NewDocumentID(),
		Name:          name,
		Content:       content,
		Kind:          KindImage,
		ImageAnalysis: analysis,
		Fingerprint:   core.Fingerprint(name, data),
		Size:          int64(len(data)),
		UploadedAt:    now,
	}
}
