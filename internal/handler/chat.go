package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/handler/dto"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/service"
)

// ChatHandler handles HTTP requests for chat operations.
type ChatHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		svc:    svc,
		logger: logger,
	}
}

// Ask handles POST /api/v1/chat.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	answer, err := h.svc.Ask(r.Context(), authCtx.UserID, service.AskInput{
		Question:   req.Question,
		SessionID:  req.SessionID,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("chat_answered",
		"user_id", authCtx.UserID,
		"session_id", req.SessionID,
		"cached", answer.Cached,
		"sources", len(answer.Sources),
	)

	writeJSON(w, http.StatusOK, dto.ChatResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
		Cached:  answer.Cached,
	})
}

// History handles GET /api/v1/chat/history.
// The session defaults to the shared default session.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}

	turns, err := h.svc.History(r.Context(), authCtx.UserID, sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChatHistoryResponse(sessionID, turns))
}

// ClearHistory handles DELETE /api/v1/chat/history.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if err := h.svc.ClearHistory(r.Context(), authCtx.UserID, sessionID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps chat service errors to HTTP responses.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "EMPTY_QUESTION", "Question must not be empty")
	case errors.Is(err, service.ErrQuestionTooLong):
		writeError(w, http.StatusBadRequest, "QUESTION_TOO_LONG", "Question exceeds maximum length")
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrDocumentNotReady):
		writeError(w, http.StatusConflict, "DOCUMENT_NOT_READY", "Document is still processing or failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
