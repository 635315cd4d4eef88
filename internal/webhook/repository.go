package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docchat/docchat/internal/model"
)

// Repository stores webhook endpoints and deliveries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webhook repository on an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateEndpoint inserts a new endpoint.
func (r *Repository) CreateEndpoint(ctx context.Context, endpoint *model.WebhookEndpoint) error {
	query := `
		INSERT INTO webhook_endpoints (
			id, owner_id, target_url, secret, enabled,
			event_types, name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	eventTypes := make([]string, len(endpoint.EventTypes))
	for i, et := range endpoint.EventTypes {
		eventTypes[i] = string(et)
	}

	_, err := r.pool.Exec(ctx, query,
		endpoint.ID,
		endpoint.OwnerID,
		endpoint.TargetURL,
		endpoint.Secret,
		endpoint.Enabled,
		eventTypes,
		endpoint.Name,
		endpoint.CreatedAt,
		endpoint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert webhook endpoint: %w", err)
	}
	return nil
}

const endpointColumns = `id, owner_id, target_url, secret, enabled, event_types,
		name, created_at, updated_at, deleted_at`

// GetEndpoint retrieves an endpoint by ID, including its signing secret.
// The delivery worker uses this; handlers go through GetEndpointForOwner.
func (r *Repository) GetEndpoint(ctx context.Context, id string) (*model.WebhookEndpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM webhook_endpoints
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanEndpointRow(r.pool.QueryRow(ctx, query, id))
}

// GetEndpointForOwner retrieves an endpoint scoped to its owner.
func (r *Repository) GetEndpointForOwner(ctx context.Context, ownerID, id string) (*model.WebhookEndpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM webhook_endpoints
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`
	return r.scanEndpointRow(r.pool.QueryRow(ctx, query, id, ownerID))
}

// ListEndpointsByOwner retrieves all endpoints registered by a user.
func (r *Repository) ListEndpointsByOwner(ctx context.Context, ownerID string) ([]*model.WebhookEndpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM webhook_endpoints
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook endpoints: %w", err)
	}
	defer rows.Close()

	return scanEndpoints(rows)
}

// ListActiveEndpointsByOwnerAndEvent retrieves enabled endpoints
// subscribed to an event type. Used by the publisher fan-out.
func (r *Repository) ListActiveEndpointsByOwnerAndEvent(ctx context.Context, ownerID string, et model.EventType) ([]*model.WebhookEndpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM webhook_endpoints
		WHERE owner_id = $1
		  AND enabled = true
		  AND deleted_at IS NULL
		  AND $2 = ANY(event_types)
	`

	rows, err := r.pool.Query(ctx, query, ownerID, string(et))
	if err != nil {
		return nil, fmt.Errorf("failed to query active webhook endpoints: %w", err)
	}
	defer rows.Close()

	return scanEndpoints(rows)
}

// DeleteEndpoint soft-deletes an endpoint owned by ownerID.
func (r *Repository) DeleteEndpoint(ctx context.Context, ownerID, id string) error {
	query := `
		UPDATE webhook_endpoints
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

// CreateDelivery inserts a pending delivery.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *model.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (
			id, endpoint_id, event_id, event_type, payload_json, status,
			attempt_count, max_attempts, next_retry_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		delivery.ID,
		delivery.EndpointID,
		delivery.EventID,
		string(delivery.EventType),
		delivery.PayloadJSON,
		string(delivery.Status),
		delivery.AttemptCount,
		delivery.MaxAttempts,
		delivery.NextRetryAt,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert webhook delivery: %w", err)
	}
	return nil
}

const deliveryColumns = `d.id, d.endpoint_id, d.event_id, d.event_type, d.payload_json,
		d.status, d.attempt_count, d.max_attempts, d.next_retry_at,
		d.last_attempt_at, d.last_http_status, d.last_error,
		d.created_at, d.updated_at`

// GetPendingDeliveries retrieves deliveries that are due, skipping rows
// another worker already holds.
func (r *Repository) GetPendingDeliveries(ctx context.Context, limit int) ([]*model.WebhookDelivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM webhook_deliveries d
		JOIN webhook_endpoints e ON d.endpoint_id = e.id
		WHERE d.status IN ('pending', 'failed')
		  AND d.next_retry_at <= $1
		  AND e.deleted_at IS NULL
		  AND e.enabled = true
		ORDER BY d.next_retry_at
		LIMIT $2
		FOR UPDATE OF d SKIP LOCKED
	`

	rows, err := r.pool.Query(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deliveries: %w", err)
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

// UpdateDeliverySuccess marks a delivery as delivered.
func (r *Repository) UpdateDeliverySuccess(ctx context.Context, id string, httpStatus int) error {
	query := `
		UPDATE webhook_deliveries
		SET status = 'success',
		    attempt_count = attempt_count + 1,
		    last_attempt_at = NOW(),
		    last_http_status = $2,
		    last_error = '',
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, httpStatus)
	if err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// UpdateDeliveryFailure records a failed attempt. When exhausted is true
// the delivery enters its terminal state and is never retried.
func (r *Repository) UpdateDeliveryFailure(ctx context.Context, id string, httpStatus *int, errMsg string, nextRetryAt time.Time, exhausted bool) error {
	status := model.DeliveryStatusFailed
	if exhausted {
		status = model.DeliveryStatusExhausted
	}

	query := `
		UPDATE webhook_deliveries
		SET status = $2,
		    attempt_count = attempt_count + 1,
		    last_attempt_at = NOW(),
		    last_http_status = $3,
		    last_error = $4,
		    next_retry_at = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, string(status), httpStatus, errMsg, nextRetryAt)
	if err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

// ListDeliveriesByEndpoint retrieves recent deliveries for an endpoint
// owned by ownerID, newest first.
func (r *Repository) ListDeliveriesByEndpoint(ctx context.Context, ownerID, endpointID string, limit int) ([]*model.WebhookDelivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM webhook_deliveries d
		JOIN webhook_endpoints e ON d.endpoint_id = e.id
		WHERE d.endpoint_id = $1 AND e.owner_id = $2
		ORDER BY d.created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, endpointID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook deliveries: %w", err)
	}
	defer rows.Close()

	return scanDeliveries(rows)
}

// GetQueueDepth counts deliveries still awaiting an attempt.
func (r *Repository) GetQueueDepth(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM webhook_deliveries
		WHERE status IN ('pending', 'failed')
	`

	var depth int64
	if err := r.pool.QueryRow(ctx, query).Scan(&depth); err != nil {
		return 0, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	return depth, nil
}

func (r *Repository) scanEndpointRow(row pgx.Row) (*model.WebhookEndpoint, error) {
	endpoint, err := scanEndpoint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEndpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook endpoint: %w", err)
	}
	return endpoint, nil
}

func scanEndpoint(row pgx.Row) (*model.WebhookEndpoint, error) {
	var endpoint model.WebhookEndpoint
	var eventTypes []string

	err := row.Scan(
		&endpoint.ID,
		&endpoint.OwnerID,
		&endpoint.TargetURL,
		&endpoint.Secret,
		&endpoint.Enabled,
		&eventTypes,
		&endpoint.Name,
		&endpoint.CreatedAt,
		&endpoint.UpdatedAt,
		&endpoint.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	endpoint.EventTypes = make([]model.EventType, len(eventTypes))
	for i, et := range eventTypes {
		endpoint.EventTypes[i] = model.EventType(et)
	}
	return &endpoint, nil
}

func scanEndpoints(rows pgx.Rows) ([]*model.WebhookEndpoint, error) {
	var endpoints []*model.WebhookEndpoint
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, endpoint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhook endpoints: %w", err)
	}
	return endpoints, nil
}

func scanDeliveries(rows pgx.Rows) ([]*model.WebhookDelivery, error) {
	var deliveries []*model.WebhookDelivery
	for rows.Next() {
		var d model.WebhookDelivery
		var eventType, status string

		err := rows.Scan(
			&d.ID,
			&d.EndpointID,
			&d.EventID,
			&eventType,
			&d.PayloadJSON,
			&status,
			&d.AttemptCount,
			&d.MaxAttempts,
			&d.NextRetryAt,
			&d.LastAttemptAt,
			&d.LastHTTPStatus,
			&d.LastError,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook delivery: %w", err)
		}
		d.EventType = model.EventType(eventType)
		d.Status = model.DeliveryStatus(status)
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhook deliveries: %w", err)
	}
	return deliveries, nil
}
