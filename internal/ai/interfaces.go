package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedQuery generates a vector embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates vector embeddings for multiple texts in a batch.
	// The returned slice contains embeddings in the same order as the input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel generates natural-language answers from prompts.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Generate produces a completion for the given system and user prompts.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// ModelName returns the identifier of the underlying model, for logging
	// and for tagging stored conversation turns.
	ModelName() string
}

// Provider aggregates AI services for convenient initialization.
type Provider interface {
	Embedder() Embedder
	ChatModel() ChatModel
}
