package webhook

import (
	"math/rand"
	"time"
)

// retryDelays is the backoff ladder per failed attempt.
var retryDelays = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
	12 * time.Hour,
}

const (
	// DefaultMaxAttempts is the maximum number of delivery attempts.
	DefaultMaxAttempts = 5

	// JitterFactor is the fraction of jitter applied around each delay.
	JitterFactor = 0.2
)

// NextRetryDelay returns the backoff delay after attemptCount failed
// attempts, with jitter to avoid synchronized retries.
func NextRetryDelay(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	if attemptCount >= len(retryDelays) {
		attemptCount = len(retryDelays) - 1
	}

	base := retryDelays[attemptCount]
	jitter := (rand.Float64()*2 - 1) * float64(base) * JitterFactor
	return time.Duration(float64(base) + jitter)
}

// NextRetryAt returns the wall-clock time of the next attempt.
func NextRetryAt(attemptCount int) time.Time {
	return time.Now().Add(NextRetryDelay(attemptCount))
}

// IsExhausted reports whether the attempt budget is spent.
func IsExhausted(attemptCount, maxAttempts int) bool {
	return attemptCount >= maxAttempts
}
