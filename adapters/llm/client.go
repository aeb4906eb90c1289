package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nuanswers/internal/errors"
	"nuanswers/ports"

	"github.com/tidwall/gjson"
)

// NewClient creates an OpenAI client based on config
func NewClient(config Config) (*OpenAIClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	if config.VisionMaxTokens <= 0 {
		config.VisionMaxTokens = 300
	}
	config.BaseURL = baseURL

	// Timeout bounds the wait for response headers only; a reply may keep
	// streaming for as long as the request context allows.
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: config.Timeout,
	}
	return &OpenAIClient{
		config: config,
		http:   &http.Client{Transport: transport},
	}, nil
}

// OpenAIClient talks to the Chat Completions API
type OpenAIClient struct {
	config Config
	http   *http.Client
}

var (
	_ ports.TextStreamer  = (*OpenAIClient)(nil)
	_ ports.ImageAnalyzer = (*OpenAIClient)(nil)
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []interface{} `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

func (c *OpenAIClient) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respRaw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := gjson.GetBytes(respRaw, "error.message").String()
		if msg == "" {
			msg = string(respRaw)
		}
		return nil, fmt.Errorf("openai http %d: %s", resp.StatusCode, msg)
	}
	return resp, nil
}

// StreamChat sends the conversation with stream=true and forwards each
// content delta to onDelta. The assembled reply is returned when the server
// sends [DONE]. A stream that ends without [DONE] is an error.
func (c *OpenAIClient) StreamChat(ctx context.Context, messages []ports.Message, onDelta func(string) error) (string, error) {
	msgs := make([]interface{}, len(messages))
	for i, m := range messages {
		msgs[i] = m
	}

	resp, err := c.post(ctx, chatRequest{
		Model:       c.config.ChatModel,
		Messages:    msgs,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return "", errors.ExternalServiceError("text generation", err)
	}
	defer resp.Body.Close()

	reply, err := readStream(resp.Body, onDelta)
	if err != nil {
		return "", errors.ExternalServiceError("text generation", err)
	}
	return reply, nil
}

// readStream parses "data: {...}" server-sent events from the completions endpoint
func readStream(r io.Reader, onDelta func(string) error) (string, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return full.String(), nil
		}
		if !gjson.Valid(payload) {
			return "", fmt.Errorf("malformed stream chunk: %q", payload)
		}
		if msg := gjson.Get(payload, "error.message"); msg.Exists() {
			return "", fmt.Errorf("stream error: %s", msg.String())
		}
		delta := gjson.Get(payload, "choices.0.delta.content").String()
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return "", fmt.Errorf("deliver delta: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", fmt.Errorf("stream ended before completion")
}

type imageMessage struct {
	Role    string        `json:"role"`
	Content []interface{} `json:"content"`
}

// AnalyzeImage asks the vision model to describe an image
func (c *OpenAIClient) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.post(ctx, chatRequest{
		Model: c.config.VisionModel,
		Messages: []interface{}{imageMessage{
			Role: ports.RoleUser,
			Content: []interface{}{
				map[string]string{"type": "text", "text": instruction},
				map[string]interface{}{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
			},
		}},
		MaxTokens: c.config.VisionMaxTokens,
	})
	if err != nil {
		return "", errors.ExternalServiceError("image analysis", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ExternalServiceError("image analysis", fmt.Errorf("read response: %w", err))
	}
	content := gjson.GetBytes(respRaw, "choices.0.message.content")
	if !content.Exists() {
		return "", errors.ExternalServiceError("image analysis", fmt.Errorf("openai response missing choices"))
	}
	return content.String(), nil
}
