// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Chat metrics
	IncAnswerCacheHit()
	IncAnswerCacheMiss()
	ObserveChatDuration(duration time.Duration)
	ObserveRetrievedChunks(count int)

	// Ingestion metrics
	IncDocumentUploaded()
	IncDocumentReady()
	IncDocumentFailed()
	ObserveIngestDuration(duration time.Duration)
	ObserveChunkCount(count int)

	// Embedding metrics
	IncEmbeddingCalls(status string) // status: "success" or "failed"

	// Webhook metrics
	IncWebhookDelivery(status string) // status: "success", "failed" or "exhausted"
	SetWebhookQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
