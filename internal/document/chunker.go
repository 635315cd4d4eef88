package document

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/docchat/docchat/internal/model"
)

// tokenEncoding is used for counting tokens in chunks. cl100k_base covers
// the OpenAI embedding and chat models this service targets.
const tokenEncoding = "cl100k_base"

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
	encoderErr  error
)

// CountTokens returns the number of tokens in text under the cl100k_base
// encoding. Falls back to a character estimate if the encoding cannot load.
func CountTokens(text string) int {
	encoderOnce.Do(func() {
		encoder, encoderErr = tiktoken.GetEncoding(tokenEncoding)
	})
	if encoderErr != nil || encoder == nil {
		// Rough heuristic: one token per 4 characters of English text.
		return (len(text) + 3) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}

// Chunker splits cleaned document text into overlapping chunks.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a Chunker with the given chunk size and overlap,
// both measured in characters. Splitting prefers paragraph, sentence and
// word boundaries, in that order.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}),
	)
	return &Chunker{splitter: splitter}
}

// Chunk splits text into model.Chunk values for the given document.
// Chunk IDs are content-derived so re-chunking identical text is idempotent.
func (c *Chunker) Chunk(documentID, filename, text string) ([]model.Chunk, error) {
	if text == "" {
		return nil, ErrNoText
	}

	pieces, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := make([]model.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if piece == "" {
			continue
		}
		chunks = append(chunks, model.Chunk{
			ID:         model.ChunkID(documentID, i, piece),
			DocumentID: documentID,
			Index:      i,
			Content:    piece,
			Filename:   filename,
			TokenCount: CountTokens(piece),
		})
	}

	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	return chunks, nil
}
