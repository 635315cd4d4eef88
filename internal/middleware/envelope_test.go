package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docchat/docchat/internal/handler/dto"
)

// Rejection responses written by middleware must use the same flat error
// envelope as the handlers, so clients can decode every error the same way.
func TestRejectionEnvelopeShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "auth error",
			write:      func(w http.ResponseWriter) { writeAuthError(w) },
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "rate limit error",
			write:      func(w http.ResponseWriter) { writeRateLimitError(w, 5*time.Second) },
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var envelope dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("body is not a flat error envelope: %v (body: %s)", err, rec.Body.String())
			}
			if envelope.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", envelope.Code, tt.wantCode)
			}
			if envelope.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}
