package model

import "time"

// Session kinds. Document sessions scope retrieval to a single document;
// general sessions search across the owner's whole corpus.
const (
	SessionKindDocument = "document"
	SessionKindGeneral  = "general"
)

// DefaultSessionID is the session used when a chat request names none.
const DefaultSessionID = "default"

// Session ties a conversation to an optional document context.
// Sessions live in Redis with a TTL; they are not persisted in Postgres.
type Session struct {
	ID         string    `json:"session_id"`
	OwnerID    string    `json:"owner_id"`
	DocumentID string    `json:"document_id,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// SourceRef identifies a retrieved chunk that grounded an answer.
type SourceRef struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"similarity_score"`
}

// ChatTurn is one question/answer exchange stored in conversation memory.
type ChatTurn struct {
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
}

// Answer is the result of a chat or summary request.
type Answer struct {
	Text    string      `json:"text"`
	Sources []SourceRef `json:"sources"`
	Cached  bool        `json:"-"`
}
