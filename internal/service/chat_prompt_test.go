package service

import (
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/model"
)

func scoredChunk(filename string, index, tokens int, content string) model.ScoredChunk {
	return model.ScoredChunk{
		Chunk: model.Chunk{
			DocumentID: "doc-1",
			Index:      index,
			Content:    content,
			Filename:   filename,
			TokenCount: tokens,
		},
		Score: 0.9,
	}
}

func TestBuildPrompt_Structure(t *testing.T) {
	t.Parallel()

	chunks := []model.ScoredChunk{
		scoredChunk("report.pdf", 0, 10, "Revenue grew 12% year over year."),
		scoredChunk("report.pdf", 3, 10, "Costs were flat."),
	}
	history := []model.ChatTurn{
		{Question: "What period does this cover?", Answer: "Fiscal year 2025."},
	}

	prompt := buildPrompt("How did revenue change?", chunks, history)

	// Sections appear in order: history, excerpts, question.
	histIdx := strings.Index(prompt, "Conversation so far:")
	ctxIdx := strings.Index(prompt, "Context excerpts:")
	qIdx := strings.Index(prompt, "Question: How did revenue change?")

	if histIdx < 0 || ctxIdx < 0 || qIdx < 0 {
		t.Fatalf("prompt missing sections:\n%s", prompt)
	}
	if !(histIdx < ctxIdx && ctxIdx < qIdx) {
		t.Errorf("sections out of order: history=%d context=%d question=%d", histIdx, ctxIdx, qIdx)
	}

	if !strings.Contains(prompt, "User: What period does this cover?") {
		t.Error("prompt should include history question")
	}
	if !strings.Contains(prompt, "Assistant: Fiscal year 2025.") {
		t.Error("prompt should include history answer")
	}
	if !strings.Contains(prompt, "[Source: report.pdf, chunk 0]") {
		t.Error("prompt should cite chunk provenance")
	}
	if !strings.Contains(prompt, "Revenue grew 12% year over year.") {
		t.Error("prompt should include chunk content")
	}
}

func TestBuildPrompt_NoHistory(t *testing.T) {
	t.Parallel()

	chunks := []model.ScoredChunk{
		scoredChunk("report.pdf", 0, 10, "Some content."),
	}

	prompt := buildPrompt("A question?", chunks, nil)

	if strings.Contains(prompt, "Conversation so far:") {
		t.Error("prompt without history should omit the conversation section")
	}
	if !strings.Contains(prompt, "Context excerpts:") {
		t.Error("prompt should include the excerpts section")
	}
}

func TestBuildPrompt_TokenBudget(t *testing.T) {
	t.Parallel()

	// First chunk fits, second blows the budget and is dropped along with
	// everything after it.
	chunks := []model.ScoredChunk{
		scoredChunk("a.pdf", 0, 100, "kept content"),
		scoredChunk("a.pdf", 1, contextTokenBudget, "dropped content"),
		scoredChunk("a.pdf", 2, 10, "also dropped"),
	}

	prompt := buildPrompt("q", chunks, nil)

	if !strings.Contains(prompt, "kept content") {
		t.Error("first chunk should fit the budget")
	}
	if strings.Contains(prompt, "dropped content") {
		t.Error("oversized chunk should be excluded")
	}
	if strings.Contains(prompt, "also dropped") {
		t.Error("chunks after the budget break should be excluded")
	}
}

func TestBuildPrompt_CountsMissingTokenCounts(t *testing.T) {
	t.Parallel()

	// TokenCount of zero falls back to counting the content.
	chunks := []model.ScoredChunk{
		scoredChunk("a.pdf", 0, 0, "short content with no precomputed token count"),
	}

	prompt := buildPrompt("q", chunks, nil)

	if !strings.Contains(prompt, "short content with no precomputed token count") {
		t.Error("chunk with zero TokenCount should still be included when it fits")
	}
}

func TestSourceRefs(t *testing.T) {
	t.Parallel()

	chunks := []model.ScoredChunk{
		scoredChunk("a.pdf", 0, 10, "x"),
		scoredChunk("b.pdf", 4, 10, "y"),
	}
	chunks[1].Score = 0.42

	refs := sourceRefs(chunks)
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}

	if refs[0].Filename != "a.pdf" || refs[0].ChunkIndex != 0 {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Filename != "b.pdf" || refs[1].ChunkIndex != 4 {
		t.Errorf("refs[1] = %+v", refs[1])
	}
	if refs[1].Score != 0.42 {
		t.Errorf("refs[1].Score = %f, want 0.42", refs[1].Score)
	}
}

func TestSourceRefs_Empty(t *testing.T) {
	t.Parallel()

	refs := sourceRefs(nil)
	if len(refs) != 0 {
		t.Errorf("expected no refs, got %d", len(refs))
	}
}
