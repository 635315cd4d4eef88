// Package pgvector implements vectorstore.Store on PostgreSQL with the
// pgvector extension. Chunks are rows with a vector column; search uses
// cosine distance with the ivfflat index created by migrations.
package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvectorgo "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/vectorstore"
)

// Store implements vectorstore.Store on PostgreSQL + pgvector.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

var _ vectorstore.Store = (*Store)(nil)

// New connects to PostgreSQL and registers pgvector types on every
// connection in the pool.
func New(ctx context.Context, databaseURL string, dimensions int) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, dimensions: dimensions}, nil
}

// Upsert stores chunks and their embeddings, overwriting existing IDs.
func (s *Store) Upsert(ctx context.Context, ownerID string, chunks []model.Chunk, vectors [][]float32) error {
	if ownerID == "" {
		return vectorstore.ErrMissingOwner
	}
	if len(chunks) != len(vectors) {
		return vectorstore.ErrVectorCountMismatch
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO chunks (id, document_id, owner_id, chunk_index, content, filename, token_count, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			token_count = EXCLUDED.token_count,
			embedding = EXCLUDED.embedding
	`

	for i, chunk := range chunks {
		if len(vectors[i]) != s.dimensions {
			return fmt.Errorf("chunk %d: %w (got %d, want %d)",
				chunk.Index, vectorstore.ErrDimensionMismatch, len(vectors[i]), s.dimensions)
		}
		batch.Queue(query,
			chunk.ID,
			chunk.DocumentID,
			ownerID,
			chunk.Index,
			chunk.Content,
			chunk.Filename,
			chunk.TokenCount,
			pgvectorgo.NewVector(vectors[i]),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float32, k int, minScore float32, filter vectorstore.Filter) ([]model.ScoredChunk, error) {
	if filter.OwnerID == "" {
		return nil, vectorstore.ErrMissingOwner
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w (got %d, want %d)",
			vectorstore.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	// <=> is cosine distance; similarity = 1 - distance.
	query := `
		SELECT id, document_id, chunk_index, content, filename, token_count,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE owner_id = $2
		  AND ($3::text = '' OR document_id = $3)
		ORDER BY embedding <=> $1
		LIMIT $4
	`

	rows, err := s.pool.Query(ctx, query,
		pgvectorgo.NewVector(vector), filter.OwnerID, filter.DocumentID, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]model.ScoredChunk, 0, k)
	for rows.Next() {
		var sc model.ScoredChunk
		if err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.DocumentID,
			&sc.Chunk.Index,
			&sc.Chunk.Content,
			&sc.Chunk.Filename,
			&sc.Chunk.TokenCount,
			&sc.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if sc.Score < minScore {
			// Rows are distance-ordered, nothing further will pass.
			break
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	return results, nil
}

// DeleteDocument removes all chunks for a document.
func (s *Store) DeleteDocument(ctx context.Context, ownerID, documentID string) error {
	if ownerID == "" {
		return vectorstore.ErrMissingOwner
	}

	_, err := s.pool.Exec(ctx,
		`DELETE FROM chunks WHERE owner_id = $1 AND document_id = $2`,
		ownerID, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// DocumentChunks returns a document's chunks ordered by index, without
// embeddings.
func (s *Store) DocumentChunks(ctx context.Context, ownerID, documentID string) ([]model.Chunk, error) {
	if ownerID == "" {
		return nil, vectorstore.ErrMissingOwner
	}

	query := `
		SELECT id, document_id, chunk_index, content, filename, token_count
		FROM chunks
		WHERE owner_id = $1 AND document_id = $2
		ORDER BY chunk_index
	`

	rows, err := s.pool.Query(ctx, query, ownerID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Index,
			&chunk.Content,
			&chunk.Filename,
			&chunk.TokenCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	return chunks, nil
}

// Stats reports row totals.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	stats := &vectorstore.Stats{
		Backend:    "pgvector",
		Dimensions: s.dimensions,
	}

	row := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT document_id) FROM chunks`)
	if err := row.Scan(&stats.Chunks, &stats.Documents); err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return stats, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
