package dto

import (
	"time"

	"github.com/docchat/docchat/internal/model"
)

// ChatRequest represents the request body for asking a question.
type ChatRequest struct {
	Question   string `json:"question"`
	SessionID  string `json:"session_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// ChatResponse carries the generated answer and its sources.
type ChatResponse struct {
	Answer  string            `json:"answer"`
	Sources []model.SourceRef `json:"sources,omitempty"`
	Cached  bool              `json:"cached"`
}

// ChatTurnResponse is one stored conversation exchange.
type ChatTurnResponse struct {
	Question  string            `json:"question"`
	Answer    string            `json:"answer"`
	Sources   []model.SourceRef `json:"sources,omitempty"`
	Model     string            `json:"model"`
	CreatedAt time.Time         `json:"created_at"`
}

// ChatHistoryResponse is a session's conversation, oldest first.
type ChatHistoryResponse struct {
	SessionID string             `json:"session_id"`
	Turns     []ChatTurnResponse `json:"turns"`
}

// SummaryResponse carries a document summary.
type SummaryResponse struct {
	Summary string            `json:"summary"`
	Sources []model.SourceRef `json:"sources,omitempty"`
	Cached  bool              `json:"cached"`
}

// ToChatHistoryResponse converts stored turns to the API representation.
func ToChatHistoryResponse(sessionID string, turns []model.ChatTurn) ChatHistoryResponse {
	out := ChatHistoryResponse{
		SessionID: sessionID,
		Turns:     make([]ChatTurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		out.Turns = append(out.Turns, ChatTurnResponse{
			Question:  t.Question,
			Answer:    t.Answer,
			Sources:   t.Sources,
			Model:     t.Model,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}
