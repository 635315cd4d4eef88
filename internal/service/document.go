package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/docchat/docchat/internal/ai"
	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/document"
	"github.com/docchat/docchat/internal/metrics"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/repository"
	"github.com/docchat/docchat/internal/vectorstore"
)

// Document service errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentNotReady = errors.New("document is still processing or failed")
)

// ingestTimeout bounds background processing of a single document.
const ingestTimeout = 10 * time.Minute

// docSessionPrefix marks sessions that are scoped to one document.
const docSessionPrefix = "doc_"

// DocumentSessionID returns the chat session ID bound to a document.
func DocumentSessionID(documentID string) string {
	return docSessionPrefix + documentID
}

// DocumentConfig holds tunables for the ingestion pipeline.
type DocumentConfig struct {
	MaxUploadSize  int64
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
	IngestWorkers  int
	SessionTTL     time.Duration
}

// DocumentService handles upload, ingestion and lifecycle of documents.
type DocumentService struct {
	repo     *repository.Repository
	store    vectorstore.Store
	embedder ai.Embedder
	cache    *cache.Cache
	chunker  *document.Chunker
	pool     *ants.Pool
	cfg      DocumentConfig
	metrics  metrics.Recorder
	events   EventPublisher
	logger   *slog.Logger
}

// EventPublisher receives document lifecycle events. The webhook
// publisher implements it; a nil publisher disables events.
type EventPublisher interface {
	PublishDocumentEvent(ctx context.Context, et model.EventType, doc *model.Document) error
}

// NewDocumentService creates a DocumentService with its ingestion worker pool.
func NewDocumentService(repo *repository.Repository, store vectorstore.Store, embedder ai.Embedder, c *cache.Cache, cfg DocumentConfig, recorder metrics.Recorder, logger *slog.Logger) (*DocumentService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IngestWorkers < 1 {
		cfg.IngestWorkers = 1
	}
	if cfg.EmbedBatchSize < 1 {
		cfg.EmbedBatchSize = 64
	}

	pool, err := ants.NewPool(cfg.IngestWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest pool: %w", err)
	}

	return &DocumentService{
		repo:     repo,
		store:    store,
		embedder: embedder,
		cache:    c,
		chunker:  document.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		pool:     pool,
		cfg:      cfg,
		metrics:  recorder,
		logger:   logger,
	}, nil
}

// SetEventPublisher enables lifecycle event publishing.
// Call before any upload is accepted.
func (s *DocumentService) SetEventPublisher(p EventPublisher) {
	s.events = p
}

// publishEvent fans the event out to subscribed webhook endpoints.
// Event delivery is best effort and never fails ingestion.
func (s *DocumentService) publishEvent(ctx context.Context, et model.EventType, doc *model.Document) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishDocumentEvent(ctx, et, doc); err != nil {
		s.logger.Warn("failed to publish document event",
			"event_type", et, "document_id", doc.ID, "error", err)
	}
}

// Release shuts down the ingestion worker pool.
// In-flight tasks are allowed to finish.
func (s *DocumentService) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Upload accepts a PDF, records it in status processing and schedules
// background ingestion. The returned document is not yet searchable.
func (s *DocumentService) Upload(ctx context.Context, ownerID, filename string, r io.Reader, size int64) (*model.Document, error) {
	doc, data, err := s.prepare(ctx, ownerID, filename, r, size)
	if err != nil {
		return nil, err
	}

	// Ingestion outlives the HTTP request, so it runs on a detached context.
	submitErr := s.pool.Submit(func() {
		ingestCtx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		s.process(ingestCtx, doc, data)
	})
	if submitErr != nil {
		// Pool unavailable (shutdown in progress): fall back to inline.
		s.process(ctx, doc, data)
	}

	return doc, nil
}

// IngestNow runs the full pipeline synchronously. Used by the bulk
// ingestion CLI where blocking is the point.
func (s *DocumentService) IngestNow(ctx context.Context, ownerID, filename string, r io.Reader, size int64) (*model.Document, error) {
	doc, data, err := s.prepare(ctx, ownerID, filename, r, size)
	if err != nil {
		return nil, err
	}

	s.process(ctx, doc, data)

	// Re-read to report the terminal status.
	return s.repo.GetDocument(ctx, ownerID, doc.ID)
}

// prepare validates the upload and creates the processing record.
func (s *DocumentService) prepare(ctx context.Context, ownerID, filename string, r io.Reader, size int64) (*model.Document, []byte, error) {
	if err := document.ValidateSize(size, s.cfg.MaxUploadSize); err != nil {
		return nil, nil, err
	}

	clean, err := document.SanitizeFilename(filename)
	if err != nil {
		return nil, nil, err
	}
	if err := document.ValidatePDFName(clean); err != nil {
		return nil, nil, err
	}

	// The PDF parser needs random access, so the upload is buffered.
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadSize {
		return nil, nil, document.ErrTooLarge
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Filename:  clean,
		Status:    model.StatusProcessing,
		SizeBytes: int64(len(data)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, nil, err
	}

	// Bind a chat session to this document up front so clients can start
	// asking about it as soon as it turns ready.
	session := &model.Session{
		ID:         DocumentSessionID(doc.ID),
		OwnerID:    ownerID,
		DocumentID: doc.ID,
		Filename:   clean,
		Kind:       model.SessionKindDocument,
		CreatedAt:  now,
	}
	if err := s.cache.StoreSession(ctx, session, s.cfg.SessionTTL); err != nil {
		s.logger.Warn("failed to store document session", "document_id", doc.ID, "error", err)
	}

	s.metrics.IncDocumentUploaded()
	if err := s.cache.RecordEvent(ctx, cache.AnalyticsEvent{
		Type: cache.EventUpload, UserID: ownerID, Detail: clean,
	}); err != nil {
		s.logger.Warn("failed to record upload event", "error", err)
	}

	return doc, data, nil
}

// process runs extraction, chunking, embedding and storage, then records
// the terminal status.
func (s *DocumentService) process(ctx context.Context, doc *model.Document, data []byte) {
	start := time.Now()

	chunkCount, err := s.ingest(ctx, doc, data)
	if err != nil {
		s.logger.Error("document ingestion failed",
			"document_id", doc.ID, "filename", doc.Filename, "error", err)
		s.metrics.IncDocumentFailed()
		if uerr := s.repo.UpdateDocumentStatus(ctx, doc.ID, model.StatusFailed, 0, err.Error()); uerr != nil {
			s.logger.Error("failed to record ingestion failure", "document_id", doc.ID, "error", uerr)
		}
		if rerr := s.cache.RecordEvent(ctx, cache.AnalyticsEvent{
			Type: cache.EventIngestErr, UserID: doc.OwnerID, Detail: doc.Filename,
		}); rerr != nil {
			s.logger.Warn("failed to record ingestion error event", "error", rerr)
		}
		doc.Status = model.StatusFailed
		doc.FailureReason = err.Error()
		s.publishEvent(ctx, model.EventDocumentFailed, doc)
		return
	}

	if err := s.repo.UpdateDocumentStatus(ctx, doc.ID, model.StatusReady, chunkCount, ""); err != nil {
		s.logger.Error("failed to mark document ready", "document_id", doc.ID, "error", err)
		return
	}

	doc.Status = model.StatusReady
	doc.ChunkCount = chunkCount
	s.publishEvent(ctx, model.EventDocumentReady, doc)

	s.metrics.IncDocumentReady()
	s.metrics.ObserveIngestDuration(time.Since(start))
	s.metrics.ObserveChunkCount(chunkCount)
	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"chunks", chunkCount,
		"duration", time.Since(start))
}

// ingest is the pipeline core: extract, clean, chunk, embed, upsert.
func (s *DocumentService) ingest(ctx context.Context, doc *model.Document, data []byte) (int, error) {
	text, err := document.ExtractText(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	text = document.CleanText(text)

	chunks, err := s.chunker.Chunk(doc.ID, doc.Filename, text)
	if err != nil {
		return 0, err
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	if err := s.store.Upsert(ctx, doc.OwnerID, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}
	return len(chunks), nil
}

// embedChunks embeds chunk contents in batches with retry.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []model.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for batchStart := 0; batchStart < len(chunks); batchStart += s.cfg.EmbedBatchSize {
		end := batchStart + s.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-batchStart)
		for _, chunk := range chunks[batchStart:end] {
			texts = append(texts, chunk.Content)
		}

		var batch [][]float32
		err := retryWithBackoff(ctx, func() error {
			var embedErr error
			batch, embedErr = s.embedder.EmbedDocuments(ctx, texts)
			return embedErr
		}, embedMaxAttempts, embedBaseDelay)
		if err != nil {
			s.metrics.IncEmbeddingCalls("failed")
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", batchStart, end-1, err)
		}
		s.metrics.IncEmbeddingCalls("success")
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Reembed regenerates the embeddings for a ready document from its stored
// chunk text. Used after switching embedding models. Returns the number of
// chunks re-embedded.
func (s *DocumentService) Reembed(ctx context.Context, ownerID, documentID string) (int, error) {
	doc, err := s.Get(ctx, ownerID, documentID)
	if err != nil {
		return 0, err
	}
	if doc.Status != model.StatusReady {
		return 0, ErrDocumentNotReady
	}

	chunks, err := s.store.DocumentChunks(ctx, ownerID, documentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	if err := s.store.Upsert(ctx, ownerID, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}

	s.logger.Info("document re-embedded",
		"document_id", documentID, "chunks", len(chunks))
	return len(chunks), nil
}

// Get returns a document owned by the user.
func (s *DocumentService) Get(ctx context.Context, ownerID, documentID string) (*model.Document, error) {
	doc, err := s.repo.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns all documents owned by the user, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]*model.Document, error) {
	return s.repo.ListDocuments(ctx, ownerID)
}

// Delete removes a document, its chunks, its session and its cached answers.
func (s *DocumentService) Delete(ctx context.Context, ownerID, documentID string) error {
	if _, err := s.Get(ctx, ownerID, documentID); err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, ownerID, documentID); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	if err := s.repo.DeleteDocument(ctx, ownerID, documentID); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.cache.InvalidateDocumentAnswers(ctx, ownerID, documentID); err != nil {
		s.logger.Warn("failed to invalidate cached answers", "document_id", documentID, "error", err)
	}
	if err := s.cache.DeleteSession(ctx, DocumentSessionID(documentID)); err != nil {
		s.logger.Warn("failed to delete document session", "document_id", documentID, "error", err)
	}
	return nil
}
