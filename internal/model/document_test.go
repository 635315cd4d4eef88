package model

import "testing"

func TestDocumentStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status DocumentStatus
		want   bool
	}{
		{"processing", StatusProcessing, true},
		{"ready", StatusReady, true},
		{"failed", StatusFailed, true},
		{"empty", DocumentStatus(""), false},
		{"unknown", DocumentStatus("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDocumentStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from DocumentStatus
		to   DocumentStatus
		want bool
	}{
		{"processing to ready", StatusProcessing, StatusReady, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"processing to processing", StatusProcessing, StatusProcessing, false},
		{"ready to failed", StatusReady, StatusFailed, false},
		{"ready to processing", StatusReady, StatusProcessing, false},
		{"failed to ready", StatusFailed, StatusReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDocument_IsSearchable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{"ready with chunks", Document{Status: StatusReady, ChunkCount: 12}, true},
		{"ready without chunks", Document{Status: StatusReady, ChunkCount: 0}, false},
		{"processing", Document{Status: StatusProcessing, ChunkCount: 12}, false},
		{"failed", Document{Status: StatusFailed, ChunkCount: 12}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.doc.IsSearchable(); got != tt.want {
				t.Errorf("IsSearchable() = %v, want %v", got, tt.want)
			}
		})
	}
}
