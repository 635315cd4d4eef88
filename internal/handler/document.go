package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/document"
	"github.com/docchat/docchat/internal/handler/dto"
	"github.com/docchat/docchat/internal/service"
)

// uploadFieldName is the multipart form field holding the PDF.
const uploadFieldName = "file"

// DocumentHandler handles HTTP requests for document operations.
type DocumentHandler struct {
	svc           *service.DocumentService
	chat          *service.ChatService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService, chat *service.ChatService, maxUploadSize int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:           svc,
		chat:          chat,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload handles POST /api/v1/documents.
// Accepts a multipart form with a "file" field containing a PDF and
// responds 202: the document is ingested in the background.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "Upload exceeds the maximum allowed size")
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", `Multipart field "file" is required`)
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), authCtx.UserID, header.Filename, file, header.Size)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_uploaded",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"size_bytes", doc.SizeBytes,
		"user_id", authCtx.UserID,
	)

	response := dto.ToDocumentResponse(doc, service.DocumentSessionID(doc.ID))
	writeJSON(w, http.StatusAccepted, response)
}

// List handles GET /api/v1/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	docs, err := h.svc.List(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.DocumentListResponse{
		Data: make([]dto.DocumentResponse, 0, len(docs)),
	}
	for _, doc := range docs {
		response.Data = append(response.Data,
			dto.ToDocumentResponse(doc, service.DocumentSessionID(doc.ID)))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	doc, err := h.svc.Get(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := dto.ToDocumentResponse(doc, service.DocumentSessionID(doc.ID))
	writeJSON(w, http.StatusOK, response)
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("document_deleted", "document_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/documents/{id}/summary.
func (h *DocumentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Document ID is required")
		return
	}

	answer, err := h.chat.Summarize(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{
		Summary: answer.Text,
		Sources: answer.Sources,
		Cached:  answer.Cached,
	})
}

// handleServiceError maps document service errors to HTTP responses.
func (h *DocumentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrDocumentNotReady):
		writeError(w, http.StatusConflict, "DOCUMENT_NOT_READY", "Document is still processing or failed")
	case errors.Is(err, document.ErrNotPDF):
		writeError(w, http.StatusBadRequest, "NOT_PDF", "Only PDF files are supported")
	case errors.Is(err, document.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "Upload exceeds the maximum allowed size")
	case errors.Is(err, document.ErrEmptyFilename):
		writeError(w, http.StatusBadRequest, "INVALID_FILENAME", "Filename is empty or invalid")
	case errors.Is(err, document.ErrNoText):
		writeError(w, http.StatusUnprocessableEntity, "NO_TEXT", "No readable text found in document")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
