// Package openai implements the ai interfaces using OpenAI-compatible APIs
// through langchaingo.
package openai

import (
	"fmt"

	"github.com/docchat/docchat/internal/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider creates and holds the embedder and chat model so they share
// client configuration.
type Provider struct {
	embedder ai.Embedder
	chat     ai.ChatModel
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider builds an embedder and chat model from the shared config.
func NewProvider(config *ai.Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	chat, err := newChatModel(config)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	return &Provider{embedder: embedder, chat: chat}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder { return p.embedder }

// ChatModel returns the answer generation service.
func (p *Provider) ChatModel() ai.ChatModel { return p.chat }

// clientOptions assembles the langchaingo OpenAI client options common to
// both services.
func clientOptions(config *ai.Config) []openai.Option {
	opts := []openai.Option{
		openai.WithToken(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}
	return opts
}
