package dto

import (
	"time"

	"github.com/docchat/docchat/internal/model"
)

// WebhookCreateRequest registers a new webhook endpoint.
// EventTypes defaults to all event types when empty.
type WebhookCreateRequest struct {
	Name       string            `json:"name,omitempty"`
	TargetURL  string            `json:"target_url"`
	EventTypes []model.EventType `json:"event_types,omitempty"`
}

// WebhookResponse represents a webhook endpoint in API responses.
type WebhookResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	TargetURL  string            `json:"target_url"`
	Enabled    bool              `json:"enabled"`
	EventTypes []model.EventType `json:"event_types"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// WebhookCreateResponse includes the signing secret. It is shown only
// in this response; the secret cannot be retrieved again.
type WebhookCreateResponse struct {
	WebhookResponse
	Secret string `json:"secret"`
}

// WebhookListResponse represents the owner's webhook endpoints.
type WebhookListResponse struct {
	Data []WebhookResponse `json:"data"`
}

// WebhookDeliveryResponse represents one delivery attempt record.
type WebhookDeliveryResponse struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	EventType      string     `json:"event_type"`
	Status         string     `json:"status"`
	AttemptCount   int        `json:"attempt_count"`
	MaxAttempts    int        `json:"max_attempts"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	LastAttemptAt  *time.Time `json:"last_attempt_at,omitempty"`
	LastHTTPStatus *int       `json:"last_http_status,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// WebhookDeliveryListResponse represents recent deliveries for an endpoint.
type WebhookDeliveryListResponse struct {
	Data []WebhookDeliveryResponse `json:"data"`
}

// ToWebhookResponse converts a WebhookEndpoint to its API representation.
func ToWebhookResponse(e *model.WebhookEndpoint) WebhookResponse {
	return WebhookResponse{
		ID:         e.ID,
		Name:       e.Name,
		TargetURL:  e.TargetURL,
		Enabled:    e.Enabled,
		EventTypes: e.EventTypes,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ToWebhookDeliveryResponse converts a WebhookDelivery to its API representation.
func ToWebhookDeliveryResponse(d *model.WebhookDelivery) WebhookDeliveryResponse {
	resp := WebhookDeliveryResponse{
		ID:             d.ID,
		EventID:        d.EventID,
		EventType:      string(d.EventType),
		Status:         string(d.Status),
		AttemptCount:   d.AttemptCount,
		MaxAttempts:    d.MaxAttempts,
		LastAttemptAt:  d.LastAttemptAt,
		LastHTTPStatus: d.LastHTTPStatus,
		LastError:      d.LastError,
		CreatedAt:      d.CreatedAt,
	}
	if !d.NextRetryAt.IsZero() && !d.IsTerminal() {
		t := d.NextRetryAt
		resp.NextRetryAt = &t
	}
	return resp
}
