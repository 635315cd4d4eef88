package model

import (
	"testing"
	"time"
)

func TestWebhookEndpoint_IsActive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name     string
		endpoint WebhookEndpoint
		want     bool
	}{
		{"enabled", WebhookEndpoint{Enabled: true}, true},
		{"disabled", WebhookEndpoint{Enabled: false}, false},
		{"deleted", WebhookEndpoint{Enabled: true, DeletedAt: &now}, false},
	}

	for _, tt := range tests {
		if got := tt.endpoint.IsActive(); got != tt.want {
			t.Errorf("%s: IsActive() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWebhookEndpoint_SubscribesToEvent(t *testing.T) {
	t.Parallel()

	e := WebhookEndpoint{EventTypes: []EventType{EventDocumentReady}}
	if !e.SubscribesToEvent(EventDocumentReady) {
		t.Error("expected subscription to document.ready")
	}
	if e.SubscribesToEvent(EventDocumentFailed) {
		t.Error("did not expect subscription to document.failed")
	}
}

func TestWebhookDelivery_IsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status DeliveryStatus
		want   bool
	}{
		{DeliveryStatusPending, false},
		{DeliveryStatusFailed, false},
		{DeliveryStatusSuccess, true},
		{DeliveryStatusExhausted, true},
	}

	for _, tt := range tests {
		d := WebhookDelivery{Status: tt.status}
		if got := d.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestIsValidEventType(t *testing.T) {
	t.Parallel()

	if !IsValidEventType(EventDocumentReady) || !IsValidEventType(EventDocumentFailed) {
		t.Error("expected document lifecycle events to be valid")
	}
	if IsValidEventType("document.renamed") {
		t.Error("unknown event type should not be valid")
	}
}
