package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docchat/docchat/internal/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	llm         *openai.LLM
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

var _ ai.ChatModel = (*ChatModel)(nil)

func newChatModel(config *ai.Config) (*ChatModel, error) {
	opts := append(clientOptions(config), openai.WithModel(config.ChatModel))
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		llm:         llm,
		model:       config.ChatModel,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// Generate produces a completion for the given system and user prompts.
func (c *ChatModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if system != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		c.logger.Error("chat completion failed", "model", c.model, "err", err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("chat completion returned no choices", "model", c.model)
		return "", ai.ErrEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// ModelName returns the identifier of the underlying model.
func (c *ChatModel) ModelName() string { return c.model }
