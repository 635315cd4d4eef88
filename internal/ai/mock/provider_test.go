package mock

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestEmbedder_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewEmbedder(8)
	ctx := context.Background()

	v1, err := e.EmbedQuery(ctx, "the same text")
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}
	v2, err := e.EmbedQuery(ctx, "the same text")
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}

	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("Same text should embed to the same vector")
		}
	}
}

func TestEmbedder_UnitLength(t *testing.T) {
	t.Parallel()

	e := NewEmbedder(16)

	vec, err := e.EmbedQuery(context.Background(), "some text")
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}

	if len(vec) != 16 {
		t.Fatalf("Vector length = %d, want 16", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("Vector norm = %f, want 1", math.Sqrt(norm))
	}
}

func TestEmbedder_DifferentTexts(t *testing.T) {
	t.Parallel()

	e := NewEmbedder(8)
	ctx := context.Background()

	vectors, err := e.EmbedDocuments(ctx, []string{"first text", "second text"})
	if err != nil {
		t.Fatalf("EmbedDocuments failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}

	same := true
	for i := range vectors[0] {
		if vectors[0][i] != vectors[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different texts should embed to different vectors")
	}
}

func TestEmbedder_ErrorAndCalls(t *testing.T) {
	t.Parallel()

	e := NewEmbedder(8)
	ctx := context.Background()

	if _, err := e.EmbedQuery(ctx, "a"); err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}

	wantErr := errors.New("upstream down")
	e.Err = wantErr
	if _, err := e.EmbedQuery(ctx, "b"); !errors.Is(err, wantErr) {
		t.Errorf("EmbedQuery error = %v, want %v", err, wantErr)
	}

	// Failed calls still count.
	if got := e.Calls(); got != 2 {
		t.Errorf("Calls() = %d, want 2", got)
	}
}

func TestChatModel_RecordsPrompts(t *testing.T) {
	t.Parallel()

	c := NewChatModel()
	ctx := context.Background()

	answer, err := c.Generate(ctx, "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "mock answer" {
		t.Errorf("Generate = %q, want mock answer", answer)
	}

	if got := c.LastPrompt(); got != "user prompt" {
		t.Errorf("LastPrompt = %q, want user prompt", got)
	}
	if len(c.Systems) != 1 || c.Systems[0] != "system prompt" {
		t.Errorf("Systems = %v, want [system prompt]", c.Systems)
	}
}

func TestChatModel_ConfiguredResponse(t *testing.T) {
	t.Parallel()

	c := NewChatModel()
	c.Response = "custom"

	answer, err := c.Generate(context.Background(), "", "q")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "custom" {
		t.Errorf("Generate = %q, want custom", answer)
	}
}

func TestProvider_Wiring(t *testing.T) {
	t.Parallel()

	p := NewProvider(8)

	if p.Embedder() == nil {
		t.Error("Embedder should not be nil")
	}
	if p.ChatModel() == nil {
		t.Error("ChatModel should not be nil")
	}
	if p.ChatModel().ModelName() != "mock-model" {
		t.Errorf("ModelName = %q, want mock-model", p.ChatModel().ModelName())
	}
}
