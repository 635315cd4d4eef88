package model

import "time"

// DocumentStatus describes the processing state of an uploaded document.
type DocumentStatus string

const (
	// StatusProcessing means the document is being parsed, chunked and embedded.
	StatusProcessing DocumentStatus = "processing"
	// StatusReady means all chunks are stored and searchable.
	StatusReady DocumentStatus = "ready"
	// StatusFailed means processing failed; FailureReason holds the cause.
	StatusFailed DocumentStatus = "failed"
)

// IsValid reports whether the status is one of the known values.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusReady, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status transition is allowed.
// Documents only move processing->ready or processing->failed.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	return s == StatusProcessing && (next == StatusReady || next == StatusFailed)
}

// Document is the metadata record for an uploaded PDF.
// The extracted chunks and their embeddings live in the vector store;
// this record tracks ownership and ingestion state.
type Document struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Filename      string         `json:"filename"`
	Status        DocumentStatus `json:"status"`
	ChunkCount    int            `json:"chunk_count"`
	SizeBytes     int64          `json:"size_bytes"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsSearchable reports whether the document can serve chat queries.
func (d *Document) IsSearchable() bool {
	return d.Status == StatusReady && d.ChunkCount > 0
}
