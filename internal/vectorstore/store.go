package vectorstore

import (
	"context"

	"github.com/docchat/docchat/internal/model"
)

// Filter narrows a similarity search.
// OwnerID is mandatory: a user only ever searches their own corpus.
// DocumentID, when set, scopes the search to a single document.
type Filter struct {
	OwnerID    string
	DocumentID string
}

// Stats describes the current state of a vector store backend.
type Stats struct {
	Backend    string `json:"backend"`
	Documents  int64  `json:"total_documents"`
	Chunks     int64  `json:"total_chunks"`
	Dimensions int    `json:"embedding_dimensions"`
}

// Store persists chunk embeddings and serves similarity searches.
// Implementations must be safe to call from multiple goroutines.
type Store interface {
	// Upsert stores a batch of chunks with their embeddings for an owner.
	// vectors must be parallel to chunks. Chunks with existing IDs are
	// overwritten, making re-ingestion idempotent.
	Upsert(ctx context.Context, ownerID string, chunks []model.Chunk, vectors [][]float32) error

	// Search returns up to k chunks most similar to the query vector,
	// restricted by filter, with similarity >= minScore,
	// ordered by score descending.
	Search(ctx context.Context, vector []float32, k int, minScore float32, filter Filter) ([]model.ScoredChunk, error)

	// DeleteDocument removes all chunks belonging to a document.
	DeleteDocument(ctx context.Context, ownerID, documentID string) error

	// DocumentChunks returns a document's stored chunks ordered by index,
	// without embeddings. Used to re-embed after a model change.
	DocumentChunks(ctx context.Context, ownerID, documentID string) ([]model.Chunk, error)

	// Stats reports backend totals for the stats endpoint.
	Stats(ctx context.Context) (*Stats, error)

	// Ping checks backend availability.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
