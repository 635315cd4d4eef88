package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/handler/dto"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/webhook"
)

// deliveryListLimit caps the delivery history returned per endpoint.
const deliveryListLimit = 50

// WebhookHandler handles HTTP requests for webhook endpoint management.
type WebhookHandler struct {
	repo   *webhook.Repository
	logger *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(repo *webhook.Repository, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /api/v1/webhooks.
// The response carries the signing secret exactly once.
func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.WebhookCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.TargetURL == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TARGET_URL", "target_url is required")
		return
	}
	if err := webhook.ValidateTargetURL(req.TargetURL); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TARGET_URL", err.Error())
		return
	}

	eventTypes := req.EventTypes
	if len(eventTypes) == 0 {
		eventTypes = append([]model.EventType{}, model.ValidEventTypes...)
	}
	for _, et := range eventTypes {
		if !model.IsValidEventType(et) {
			writeError(w, http.StatusBadRequest, "INVALID_EVENT_TYPE", "Unknown event type: "+string(et))
			return
		}
	}

	secret, err := webhook.GenerateSecret()
	if err != nil {
		h.logger.Error("failed to generate webhook secret", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	now := time.Now()
	endpoint := &model.WebhookEndpoint{
		ID:         ulid.Make().String(),
		OwnerID:    authCtx.UserID,
		TargetURL:  req.TargetURL,
		Secret:     secret,
		Enabled:    true,
		EventTypes: eventTypes,
		Name:       req.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.CreateEndpoint(r.Context(), endpoint); err != nil {
		h.logger.Error("failed to create webhook endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	h.logger.Info("webhook_created",
		"user_id", authCtx.UserID,
		"endpoint_id", endpoint.ID,
		"target_host", webhook.ExtractHost(endpoint.TargetURL),
	)

	writeJSON(w, http.StatusCreated, dto.WebhookCreateResponse{
		WebhookResponse: dto.ToWebhookResponse(endpoint),
		Secret:          secret,
	})
}

// List handles GET /api/v1/webhooks.
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	endpoints, err := h.repo.ListEndpointsByOwner(r.Context(), authCtx.UserID)
	if err != nil {
		h.logger.Error("failed to list webhook endpoints", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	resp := dto.WebhookListResponse{Data: make([]dto.WebhookResponse, 0, len(endpoints))}
	for _, endpoint := range endpoints {
		resp.Data = append(resp.Data, dto.ToWebhookResponse(endpoint))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/webhooks/{id}.
func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	endpoint, err := h.repo.GetEndpointForOwner(r.Context(), authCtx.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.handleRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWebhookResponse(endpoint))
}

// Delete handles DELETE /api/v1/webhooks/{id}.
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	if err := h.repo.DeleteEndpoint(r.Context(), authCtx.UserID, chi.URLParam(r, "id")); err != nil {
		h.handleRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDeliveries handles GET /api/v1/webhooks/{id}/deliveries.
func (h *WebhookHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	endpointID := chi.URLParam(r, "id")

	// Ownership check before exposing delivery history.
	if _, err := h.repo.GetEndpointForOwner(r.Context(), authCtx.UserID, endpointID); err != nil {
		h.handleRepoError(w, err)
		return
	}

	deliveries, err := h.repo.ListDeliveriesByEndpoint(r.Context(), authCtx.UserID, endpointID, deliveryListLimit)
	if err != nil {
		h.logger.Error("failed to list webhook deliveries", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	resp := dto.WebhookDeliveryListResponse{Data: make([]dto.WebhookDeliveryResponse, 0, len(deliveries))}
	for _, d := range deliveries {
		resp.Data = append(resp.Data, dto.ToWebhookDeliveryResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WebhookHandler) handleRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, webhook.ErrEndpointNotFound) {
		writeError(w, http.StatusNotFound, "WEBHOOK_NOT_FOUND", "Webhook endpoint not found")
		return
	}
	h.logger.Error("webhook repository error", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
