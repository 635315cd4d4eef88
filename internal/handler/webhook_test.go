package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/handler/dto"
	"github.com/docchat/docchat/internal/model"
)

// Validation runs before any storage access, so a handler without a
// repository is enough to cover the rejection paths.
func TestWebhookCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "invalid json",
			body:     `{"target_url":`,
			wantCode: "INVALID_JSON",
		},
		{
			name:     "missing target url",
			body:     `{"name":"builds"}`,
			wantCode: "MISSING_TARGET_URL",
		},
		{
			name:     "http scheme rejected",
			body:     `{"target_url":"http://example.com/hook"}`,
			wantCode: "INVALID_TARGET_URL",
		},
		{
			name:     "localhost rejected",
			body:     `{"target_url":"https://localhost/hook"}`,
			wantCode: "INVALID_TARGET_URL",
		},
		{
			name:     "unknown event type",
			body:     `{"target_url":"https://example.com/hook","event_types":["document.renamed"]}`,
			wantCode: "INVALID_EVENT_TYPE",
		},
	}

	h := NewWebhookHandler(nil, slog.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks", strings.NewReader(tt.body))
			req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{
				UserID: "user-1",
				Email:  "owner@example.com",
			}))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Error == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}
