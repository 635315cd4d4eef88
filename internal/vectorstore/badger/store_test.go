package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/vectorstore"
)

const testDims = 4

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open("", testDims, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testChunks(documentID string, n int) ([]model.Chunk, [][]float32) {
	chunks := make([]model.Chunk, n)
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		content := documentID + " chunk content"
		chunks[i] = model.Chunk{
			ID:         model.ChunkID(documentID, i, content),
			DocumentID: documentID,
			Index:      i,
			Content:    content,
			Filename:   "test.pdf",
			TokenCount: 3,
		}
		// Unit basis vectors so search scores are predictable.
		vec := make([]float32, testDims)
		vec[i%testDims] = 1
		vectors[i] = vec
	}
	return chunks, vectors
}

func TestUpsertAndSearch(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 3)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	// Query along the first axis: chunk 0 is the exact match.
	results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 2, 0.5, vectorstore.Filter{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestSearch_OwnerIsolation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunksA, vectorsA := testChunks("doc-a", 2)
	chunksB, vectorsB := testChunks("doc-b", 2)
	require.NoError(t, store.Upsert(ctx, "owner-a", chunksA, vectorsA))
	require.NoError(t, store.Upsert(ctx, "owner-b", chunksB, vectorsB))

	results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 10, -1, vectorstore.Filter{OwnerID: "owner-a"})
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, "doc-a", r.Chunk.DocumentID, "results must never cross owners")
	}
}

func TestSearch_DocumentFilter(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks1, vectors1 := testChunks("doc-1", 2)
	chunks2, vectors2 := testChunks("doc-2", 2)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks1, vectors1))
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks2, vectors2))

	results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 10, -1,
		vectorstore.Filter{OwnerID: "owner-1", DocumentID: "doc-2"})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Equal(t, "doc-2", r.Chunk.DocumentID)
	}
}

func TestSearch_MinScoreAndK(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 4)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	// minScore -1 admits everything; k caps the result count.
	results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 2, -1, vectorstore.Filter{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Results ordered by score descending.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	// High minScore filters out orthogonal chunks.
	results, err = store.Search(ctx, []float32{1, 0, 0, 0}, 10, 0.9, vectorstore.Filter{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_Validation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, []float32{1, 0, 0, 0}, 5, 0, vectorstore.Filter{})
	assert.ErrorIs(t, err, vectorstore.ErrMissingOwner)

	_, err = store.Search(ctx, []float32{1, 0}, 5, 0, vectorstore.Filter{OwnerID: "owner-1"})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestUpsert_Validation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 2)

	err := store.Upsert(ctx, "", chunks, vectors)
	assert.ErrorIs(t, err, vectorstore.ErrMissingOwner)

	err = store.Upsert(ctx, "owner-1", chunks, vectors[:1])
	assert.ErrorIs(t, err, vectorstore.ErrVectorCountMismatch)

	err = store.Upsert(ctx, "owner-1", chunks[:1], [][]float32{{1, 0}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)

	// Empty batch is a no-op.
	assert.NoError(t, store.Upsert(ctx, "owner-1", nil, nil))
}

func TestUpsert_Idempotent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 3)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Chunks, "re-ingesting must not duplicate chunks")
	assert.Equal(t, int64(1), stats.Documents)
}

func TestDeleteDocument(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 3)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	// Wrong owner is a no-op, not an error.
	require.NoError(t, store.DeleteDocument(ctx, "owner-2", "doc-1"))
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Chunks)

	require.NoError(t, store.DeleteDocument(ctx, "owner-1", "doc-1"))
	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Chunks)
	assert.Equal(t, int64(0), stats.Documents)

	// Deleting an unknown document is a no-op.
	require.NoError(t, store.DeleteDocument(ctx, "owner-1", "doc-missing"))
}

func TestStats(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "badger", stats.Backend)
	assert.Equal(t, testDims, stats.Dimensions)
	assert.Equal(t, int64(0), stats.Chunks)

	chunks, vectors := testChunks("doc-1", 2)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Chunks)
	assert.Equal(t, int64(1), stats.Documents)
}

func TestPing_ClosedStore(t *testing.T) {
	t.Parallel()

	store, err := Open("", testDims, true)
	require.NoError(t, err)

	assert.NoError(t, store.Ping(context.Background()))

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Ping(context.Background()), vectorstore.ErrStoreClosed)
}

func TestDocumentChunks(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 3)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	stored, err := store.DocumentChunks(ctx, "owner-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)

	for i, chunk := range stored {
		assert.Equal(t, i, chunk.Index, "chunks must be ordered by index")
		assert.Equal(t, "doc-1", chunk.DocumentID)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestDocumentChunks_WrongOwner(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	chunks, vectors := testChunks("doc-1", 2)
	require.NoError(t, store.Upsert(ctx, "owner-1", chunks, vectors))

	stored, err := store.DocumentChunks(ctx, "owner-2", "doc-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = store.DocumentChunks(ctx, "", "doc-1")
	assert.ErrorIs(t, err, vectorstore.ErrMissingOwner)
}
