package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docchat/docchat/internal/model"
)

// Publisher fans an event out into pending deliveries, one per active
// endpoint subscribed to the event type. The worker sends them.
type Publisher struct {
	repo   *Repository
	logger *slog.Logger
}

// NewPublisher creates a webhook publisher.
func NewPublisher(repo *Repository, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		repo:   repo,
		logger: logger.With("component", "webhook.publisher"),
	}
}

// PublishDocumentEvent enqueues deliveries for a document lifecycle
// event. A failure for one endpoint does not block the others.
func (p *Publisher) PublishDocumentEvent(ctx context.Context, et model.EventType, doc *model.Document) error {
	endpoints, err := p.repo.ListActiveEndpointsByOwnerAndEvent(ctx, doc.OwnerID, et)
	if err != nil {
		return fmt.Errorf("failed to list active endpoints: %w", err)
	}
	if len(endpoints) == 0 {
		return nil
	}

	eventID := ulid.Make().String()
	payload := model.WebhookPayload{
		EventType: string(et),
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"document_id": doc.ID,
			"filename":    doc.Filename,
			"status":      string(doc.Status),
			"chunk_count": doc.ChunkCount,
		},
	}
	if doc.FailureReason != "" {
		payload.Data["failure_reason"] = doc.FailureReason
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	for _, endpoint := range endpoints {
		delivery := &model.WebhookDelivery{
			ID:          ulid.Make().String(),
			EndpointID:  endpoint.ID,
			EventID:     eventID,
			EventType:   et,
			PayloadJSON: string(payloadJSON),
			Status:      model.DeliveryStatusPending,
			MaxAttempts: DefaultMaxAttempts,
			NextRetryAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := p.repo.CreateDelivery(ctx, delivery); err != nil {
			p.logger.Warn("failed to enqueue webhook delivery",
				"endpoint_id", endpoint.ID,
				"event_type", et,
				"document_id", doc.ID,
				"error", err,
			)
			continue
		}

		p.logger.Debug("webhook delivery enqueued",
			"delivery_id", delivery.ID,
			"endpoint_id", endpoint.ID,
			"event_type", et,
		)
	}

	return nil
}
