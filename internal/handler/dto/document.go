package dto

import (
	"time"

	"github.com/docchat/docchat/internal/model"
)

// DocumentResponse represents a document in API responses.
type DocumentResponse struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Status        string    `json:"status"`
	ChunkCount    int       `json:"chunk_count"`
	SizeBytes     int64     `json:"size_bytes"`
	FailureReason string    `json:"failure_reason,omitempty"`
	SessionID     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentListResponse represents the owner's documents.
type DocumentListResponse struct {
	Data []DocumentResponse `json:"data"`
}

// ToDocumentResponse converts a Document model to its API representation.
// sessionID is the chat session bound to the document.
func ToDocumentResponse(doc *model.Document, sessionID string) DocumentResponse {
	return DocumentResponse{
		ID:            doc.ID,
		Filename:      doc.Filename,
		Status:        string(doc.Status),
		ChunkCount:    doc.ChunkCount,
		SizeBytes:     doc.SizeBytes,
		FailureReason: doc.FailureReason,
		SessionID:     sessionID,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
