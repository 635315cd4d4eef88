package webhook

import (
	"fmt"
	"testing"
	"time"
)

func TestNextRetryDelay(t *testing.T) {
	t.Parallel()

	// Bounds are the base delay with the jitter factor applied.
	tests := []struct {
		attempt  int
		minDelay time.Duration
		maxDelay time.Duration
	}{
		{0, 48 * time.Second, 72 * time.Second},
		{1, 4 * time.Minute, 6 * time.Minute},
		{2, 24 * time.Minute, 36 * time.Minute},
		{3, 96 * time.Minute, 144 * time.Minute},
		{4, 576 * time.Minute, 864 * time.Minute},
		{10, 576 * time.Minute, 864 * time.Minute}, // beyond the ladder stays at the last step
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			t.Parallel()
			// Sample repeatedly to cover the jitter range.
			for i := 0; i < 20; i++ {
				delay := NextRetryDelay(tt.attempt)
				if delay < tt.minDelay || delay > tt.maxDelay {
					t.Errorf("NextRetryDelay(%d) = %v, want between %v and %v",
						tt.attempt, delay, tt.minDelay, tt.maxDelay)
				}
			}
		})
	}
}

func TestNextRetryDelay_NegativeAttempt(t *testing.T) {
	t.Parallel()

	delay := NextRetryDelay(-1)
	if delay < 48*time.Second || delay > 72*time.Second {
		t.Errorf("NextRetryDelay(-1) should behave like attempt 0, got %v", delay)
	}
}

func TestNextRetryAt(t *testing.T) {
	t.Parallel()

	before := time.Now()
	at := NextRetryAt(0)
	if at.Before(before) {
		t.Errorf("NextRetryAt(0) = %v, want after %v", at, before)
	}
}

func TestIsExhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt     int
		maxAttempts int
		want        bool
	}{
		{0, 5, false},
		{4, 5, false},
		{5, 5, true},
		{6, 5, true},
	}

	for _, tt := range tests {
		if got := IsExhausted(tt.attempt, tt.maxAttempts); got != tt.want {
			t.Errorf("IsExhausted(%d, %d) = %v, want %v",
				tt.attempt, tt.maxAttempts, got, tt.want)
		}
	}
}
