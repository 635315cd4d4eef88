package model

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Chunk is a contiguous piece of extracted document text.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Content    string `json:"content"`
	Filename   string `json:"filename"`
	TokenCount int    `json:"token_count"`
}

// ScoredChunk is a chunk returned from similarity search with its score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// ChunkID derives a deterministic chunk identifier from the document ID,
// chunk position and content using BLAKE2b. Re-ingesting identical content
// yields identical IDs, which makes vector store upserts idempotent.
func ChunkID(documentID string, index int, content string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(documentID))

	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], uint64(index))
	h.Write(idx[:])

	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}
