package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/docchat/docchat/internal/model"
)

// Common errors for document repository operations.
var (
	ErrDocumentNotFound = errors.New("document not found")
)

const documentColumns = `id, owner_id, filename, status, chunk_count, size_bytes, failure_reason, created_at, updated_at`

func scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Filename,
		&doc.Status,
		&doc.ChunkCount,
		&doc.SizeBytes,
		&doc.FailureReason,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// CreateDocument inserts a new document record, normally in status processing.
func (r *Repository) CreateDocument(ctx context.Context, doc *model.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, filename, status, chunk_count, size_bytes, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Filename,
		doc.Status,
		doc.ChunkCount,
		doc.SizeBytes,
		doc.FailureReason,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID, scoped to its owner.
func (r *Repository) GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND owner_id = $2`

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents owned by a user, newest first.
func (r *Repository) ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return docs, nil
}

// UpdateDocumentStatus records the outcome of ingestion. The transition is
// enforced in SQL so a late worker cannot overwrite a terminal status.
func (r *Repository) UpdateDocumentStatus(ctx context.Context, id string, status model.DocumentStatus, chunkCount int, failureReason string) error {
	query := `
		UPDATE documents
		SET status = $2, chunk_count = $3, failure_reason = $4, updated_at = $5
		WHERE id = $1 AND status = 'processing'
	`

	tag, err := r.pool.Exec(ctx, query, id, status, chunkCount, failureReason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// DeleteDocument removes a document record, scoped to its owner.
func (r *Repository) DeleteDocument(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// DocumentCounts holds aggregate document statistics.
type DocumentCounts struct {
	Total      int64
	Ready      int64
	Processing int64
	Failed     int64
	Chunks     int64
}

// CountDocuments returns aggregate document statistics across all users.
func (r *Repository) CountDocuments(ctx context.Context) (*DocumentCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'ready'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COALESCE(SUM(chunk_count), 0)
		FROM documents
	`

	var counts DocumentCounts
	err := r.pool.QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Ready,
		&counts.Processing,
		&counts.Failed,
		&counts.Chunks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	return &counts, nil
}
