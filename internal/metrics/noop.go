package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAnswerCacheHit is a no-op.
func (n *NoopRecorder) IncAnswerCacheHit() {}

// IncAnswerCacheMiss is a no-op.
func (n *NoopRecorder) IncAnswerCacheMiss() {}

// ObserveChatDuration is a no-op.
func (n *NoopRecorder) ObserveChatDuration(duration time.Duration) {}

// ObserveRetrievedChunks is a no-op.
func (n *NoopRecorder) ObserveRetrievedChunks(count int) {}

// IncDocumentUploaded is a no-op.
func (n *NoopRecorder) IncDocumentUploaded() {}

// IncDocumentReady is a no-op.
func (n *NoopRecorder) IncDocumentReady() {}

// IncDocumentFailed is a no-op.
func (n *NoopRecorder) IncDocumentFailed() {}

// ObserveIngestDuration is a no-op.
func (n *NoopRecorder) ObserveIngestDuration(duration time.Duration) {}

// ObserveChunkCount is a no-op.
func (n *NoopRecorder) ObserveChunkCount(count int) {}

// IncEmbeddingCalls is a no-op.
func (n *NoopRecorder) IncEmbeddingCalls(status string) {}

// IncWebhookDelivery is a no-op.
func (n *NoopRecorder) IncWebhookDelivery(status string) {}

// SetWebhookQueueDepth is a no-op.
func (n *NoopRecorder) SetWebhookQueueDepth(depth int64) {}
