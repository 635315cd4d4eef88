// Package mock provides deterministic in-memory implementations of the ai
// interfaces for testing.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/docchat/docchat/internal/ai"
)

// Provider bundles the mock services.
type Provider struct {
	Emb  *Embedder
	Chat *ChatModel
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a mock provider producing vectors of the given dimension.
func NewProvider(dimensions int) *Provider {
	return &Provider{
		Emb:  NewEmbedder(dimensions),
		Chat: NewChatModel(),
	}
}

// Embedder returns the mock embedding service.
func (p *Provider) Embedder() ai.Embedder { return p.Emb }

// ChatModel returns the mock chat service.
func (p *Provider) ChatModel() ai.ChatModel { return p.Chat }

// Embedder produces deterministic unit vectors derived from the input text.
// Identical texts always embed to identical vectors, so similarity of a text
// with itself is exactly 1.0.
type Embedder struct {
	dimensions int

	mu    sync.Mutex
	calls int
	Err   error // When set, all calls fail with this error.
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder with the given output dimension.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions < 1 {
		dimensions = 8
	}
	return &Embedder{dimensions: dimensions}
}

// EmbedQuery returns the deterministic embedding for text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments returns deterministic embeddings for each text.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	err := e.Err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

// Calls reports how many embedding calls were made.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *Embedder) vectorFor(text string) []float32 {
	vec := make([]float32, e.dimensions)
	var norm float64

	// Seed each component from a different view of the text.
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		// Map to (-1, 1)
		v := float64(h.Sum32())/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	// Normalize to a unit vector so cosine math behaves like real embeddings.
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// ChatModel returns canned responses and records prompts.
type ChatModel struct {
	mu       sync.Mutex
	Response string   // Answer returned by Generate. Defaults to "mock answer".
	Err      error    // When set, Generate fails with this error.
	Prompts  []string // All user prompts seen, in order.
	Systems  []string // All system prompts seen, in order.
}

var _ ai.ChatModel = (*ChatModel)(nil)

// NewChatModel creates a mock chat model.
func NewChatModel() *ChatModel {
	return &ChatModel{Response: "mock answer"}
}

// Generate records the prompts and returns the configured response.
func (c *ChatModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Systems = append(c.Systems, system)
	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// ModelName identifies the mock model.
func (c *ChatModel) ModelName() string { return "mock-model" }

// LastPrompt returns the most recent user prompt, or "".
func (c *ChatModel) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Prompts) == 0 {
		return ""
	}
	return c.Prompts[len(c.Prompts)-1]
}
