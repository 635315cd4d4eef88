package ai

import "errors"

// Config holds configuration for AI service providers.
type Config struct {
	// APIKey authenticates against the OpenAI-compatible API.
	APIKey string

	// BaseURL overrides the API host. Empty means the provider default
	// (api.openai.com for the openai subpackage).
	BaseURL string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier for answer generation.
	// Example: "gpt-4o-mini"
	ChatModel string

	// Temperature for chat completions. Lower values give more grounded answers.
	Temperature float64

	// MaxTokens caps the length of generated answers.
	MaxTokens int

	// EmbedBatchSize limits how many texts are embedded per API call.
	EmbedBatchSize int
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("ai config: APIKey is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.MaxTokens < 1 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.EmbedBatchSize < 1 {
		return errors.New("ai config: EmbedBatchSize must be positive")
	}
	return nil
}
