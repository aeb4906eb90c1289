package llm

import (
	"time"

	"nuanswers/internal/config"
)

// Config holds LLM adapter configuration
type Config struct {
	APIKey          string        // OpenAI API key
	BaseURL         string        // Optional override (default: https://api.openai.com/v1)
	ChatModel       string        // e.g., "gpt-3.5-turbo"
	VisionModel     string        // model used for image analysis
	Temperature     float64       // 0.0-1.0, lower = more deterministic
	MaxTokens       int           // Max tokens in a chat response
	VisionMaxTokens int           // Max tokens in an image analysis
	Timeout         time.Duration // Wait for response headers
}

// ConfigFrom maps application configuration onto the adapter
func ConfigFrom(c config.AIConfig) Config {
	return Config{
		APIKey:          c.OpenAIKey,
		BaseURL:         c.BaseURL,
		ChatModel:       c.ChatModel,
		VisionModel:     c.VisionModel,
		Temperature:     c.Temperature,
		MaxTokens:       c.MaxTokens,
		VisionMaxTokens: c.VisionMaxTokens,
		Timeout:         c.Timeout,
	}
}
