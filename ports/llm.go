package ports

import "context"

// Message is one chat turn sent to the text-generation service
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TextStreamer produces an incremental reply. onDelta is called for every
// token chunk in order; the assembled reply is returned once the stream ends.
type TextStreamer interface {
	StreamChat(ctx context.Context, messages []Message, onDelta func(string) error) (string, error)
}

// ImageAnalyzer describes an image for use as document context
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}
