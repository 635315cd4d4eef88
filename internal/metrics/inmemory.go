package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AnswerCacheHits       uint64
	AnswerCacheMisses     uint64
	ChatDurationCount     uint64
	ChatDurationTotalNs   int64
	RetrievedChunksTotal  uint64
	DocumentsUploaded     uint64
	DocumentsReady        uint64
	DocumentsFailed       uint64
	IngestDurationCount   uint64
	IngestDurationTotalNs int64
	ChunksTotal           uint64
	EmbeddingSuccesses    uint64
	EmbeddingFailures     uint64
	WebhookSuccesses      uint64
	WebhookFailures       uint64
	WebhookExhausted      uint64
	WebhookQueueDepth     int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	answerCacheHits       uint64
	answerCacheMisses     uint64
	chatDurationCount     uint64
	chatDurationTotalNs   int64
	retrievedChunksTotal  uint64
	documentsUploaded     uint64
	documentsReady        uint64
	documentsFailed       uint64
	ingestDurationCount   uint64
	ingestDurationTotalNs int64
	chunksTotal           uint64
	embeddingSuccesses    uint64
	embeddingFailures     uint64
	webhookSuccesses      uint64
	webhookFailures       uint64
	webhookExhausted      uint64
	webhookQueueDepth     int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AnswerCacheHits:       atomic.LoadUint64(&m.answerCacheHits),
		AnswerCacheMisses:     atomic.LoadUint64(&m.answerCacheMisses),
		ChatDurationCount:     atomic.LoadUint64(&m.chatDurationCount),
		ChatDurationTotalNs:   atomic.LoadInt64(&m.chatDurationTotalNs),
		RetrievedChunksTotal:  atomic.LoadUint64(&m.retrievedChunksTotal),
		DocumentsUploaded:     atomic.LoadUint64(&m.documentsUploaded),
		DocumentsReady:        atomic.LoadUint64(&m.documentsReady),
		DocumentsFailed:       atomic.LoadUint64(&m.documentsFailed),
		IngestDurationCount:   atomic.LoadUint64(&m.ingestDurationCount),
		IngestDurationTotalNs: atomic.LoadInt64(&m.ingestDurationTotalNs),
		ChunksTotal:           atomic.LoadUint64(&m.chunksTotal),
		EmbeddingSuccesses:    atomic.LoadUint64(&m.embeddingSuccesses),
		EmbeddingFailures:     atomic.LoadUint64(&m.embeddingFailures),
		WebhookSuccesses:      atomic.LoadUint64(&m.webhookSuccesses),
		WebhookFailures:       atomic.LoadUint64(&m.webhookFailures),
		WebhookExhausted:      atomic.LoadUint64(&m.webhookExhausted),
		WebhookQueueDepth:     atomic.LoadInt64(&m.webhookQueueDepth),
	}
}

// IncAnswerCacheHit increments the answer cache hit counter.
func (m *InMemoryRecorder) IncAnswerCacheHit() {
	atomic.AddUint64(&m.answerCacheHits, 1)
}

// IncAnswerCacheMiss increments the answer cache miss counter.
func (m *InMemoryRecorder) IncAnswerCacheMiss() {
	atomic.AddUint64(&m.answerCacheMisses, 1)
}

// ObserveChatDuration records end-to-end chat handling time.
func (m *InMemoryRecorder) ObserveChatDuration(duration time.Duration) {
	atomic.AddUint64(&m.chatDurationCount, 1)
	atomic.AddInt64(&m.chatDurationTotalNs, duration.Nanoseconds())
}

// ObserveRetrievedChunks records how many chunks a search returned.
func (m *InMemoryRecorder) ObserveRetrievedChunks(count int) {
	atomic.AddUint64(&m.retrievedChunksTotal, uint64(count))
}

// IncDocumentUploaded increments the upload counter.
func (m *InMemoryRecorder) IncDocumentUploaded() {
	atomic.AddUint64(&m.documentsUploaded, 1)
}

// IncDocumentReady increments the successful ingestion counter.
func (m *InMemoryRecorder) IncDocumentReady() {
	atomic.AddUint64(&m.documentsReady, 1)
}

// IncDocumentFailed increments the failed ingestion counter.
func (m *InMemoryRecorder) IncDocumentFailed() {
	atomic.AddUint64(&m.documentsFailed, 1)
}

// ObserveIngestDuration records document ingestion time.
func (m *InMemoryRecorder) ObserveIngestDuration(duration time.Duration) {
	atomic.AddUint64(&m.ingestDurationCount, 1)
	atomic.AddInt64(&m.ingestDurationTotalNs, duration.Nanoseconds())
}

// ObserveChunkCount records how many chunks a document produced.
func (m *InMemoryRecorder) ObserveChunkCount(count int) {
	atomic.AddUint64(&m.chunksTotal, uint64(count))
}

// IncEmbeddingCalls increments embedding call counters by status.
func (m *InMemoryRecorder) IncEmbeddingCalls(status string) {
	if status == "success" {
		atomic.AddUint64(&m.embeddingSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.embeddingFailures, 1)
}

// IncWebhookDelivery increments webhook delivery counters by status.
func (m *InMemoryRecorder) IncWebhookDelivery(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.webhookSuccesses, 1)
	case "exhausted":
		atomic.AddUint64(&m.webhookExhausted, 1)
	default:
		atomic.AddUint64(&m.webhookFailures, 1)
	}
}

// SetWebhookQueueDepth records the number of deliveries awaiting an attempt.
func (m *InMemoryRecorder) SetWebhookQueueDepth(depth int64) {
	atomic.StoreInt64(&m.webhookQueueDepth, depth)
}
