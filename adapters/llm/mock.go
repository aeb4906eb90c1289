package llm

import (
	"context"
	"sync"

	"nuanswers/ports"
)

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Chunks   []string // streamed in order
	Error    error    // returned after streaming Chunks, to simulate a mid-stream failure
	Analysis string
	ImageErr error

	mu    sync.Mutex
	Calls [][]ports.Message
}

// StreamChat replays Chunks through onDelta
func (m *MockLLMClient) StreamChat(ctx context.Context, messages []ports.Message, onDelta func(string) error) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]ports.Message(nil), messages...))
	m.mu.Unlock()

	var full string
	for _, c := range m.Chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		full += c
		if onDelta != nil {
			if err := onDelta(c); err != nil {
				return "", err
			}
		}
	}
	if m.Error != nil {
		return "", m.Error
	}
	return full, nil
}

// AnalyzeImage returns Analysis or ImageErr
func (m *MockLLMClient) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if m.ImageErr != nil {
		return "", m.ImageErr
	}
	return m.Analysis, nil
}

// LastCall returns the most recent conversation sent to StreamChat
func (m *MockLLMClient) LastCall() []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}
