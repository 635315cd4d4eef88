package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docchat/docchat/internal/ai"
	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/document"
	"github.com/docchat/docchat/internal/metrics"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/repository"
	"github.com/docchat/docchat/internal/vectorstore"
)

// Chat service errors.
var (
	ErrEmptyQuestion   = errors.New("question must not be empty")
	ErrQuestionTooLong = errors.New("question exceeds maximum length")
)

const (
	maxQuestionLength = 2000

	// contextTokenBudget caps the retrieved context included in a prompt,
	// leaving room for history, the question and the completion.
	contextTokenBudget = 3000

	// noContextAnswer is returned when retrieval finds nothing relevant.
	noContextAnswer = "I could not find relevant information in your documents to answer that. Try rephrasing the question or uploading a document that covers the topic."

	answerSystemPrompt = "You are a helpful assistant that answers questions about the user's documents. " +
		"Answer using only the provided context excerpts. If the context does not contain the answer, say so plainly. " +
		"Be concise and cite facts from the excerpts rather than speculating."

	summarySystemPrompt = "You are a helpful assistant that summarizes documents. " +
		"Write a clear summary of the provided excerpts covering the main topics, key findings and conclusions. " +
		"Use short paragraphs or bullet points."

	summaryQuery = "Summarize the main topics, key findings and conclusions of this document."
)

// ChatConfig holds retrieval and memory tunables.
type ChatConfig struct {
	SearchTopK           int
	SummaryTopK          int
	MinSimilarity        float32
	ConversationMaxTurns int
	ConversationTTL      time.Duration
	SessionTTL           time.Duration
	AnswerCacheTTL       time.Duration
	SummaryCacheTTL      time.Duration
}

// ChatService answers questions about a user's documents with
// retrieval-augmented generation and per-session conversation memory.
type ChatService struct {
	repo      *repository.Repository
	store     vectorstore.Store
	cache     *cache.Cache
	embedder  ai.Embedder
	chatModel ai.ChatModel
	cfg       ChatConfig
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(repo *repository.Repository, store vectorstore.Store, c *cache.Cache, embedder ai.Embedder, chatModel ai.ChatModel, cfg ChatConfig, recorder metrics.Recorder, logger *slog.Logger) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		repo:      repo,
		store:     store,
		cache:     c,
		embedder:  embedder,
		chatModel: chatModel,
		cfg:       cfg,
		metrics:   recorder,
		logger:    logger,
	}
}

// AskInput defines a chat request.
type AskInput struct {
	Question   string
	SessionID  string
	DocumentID string
}

// Ask answers a question, retrieving relevant chunks from the user's
// corpus and threading conversation memory through the session.
func (s *ChatService) Ask(ctx context.Context, ownerID string, input AskInput) (*model.Answer, error) {
	start := time.Now()

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if len(question) > maxQuestionLength {
		return nil, ErrQuestionTooLong
	}

	sessionID, documentID, err := s.resolveScope(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	// Identical questions within the cache window skip retrieval and the model.
	if cached, err := s.cache.GetAnswer(ctx, ownerID, question, documentID); err == nil && cached != nil {
		s.metrics.IncAnswerCacheHit()
		s.recordEvent(ctx, cache.EventCacheHit, ownerID, sessionID)
		return cached, nil
	}
	s.metrics.IncAnswerCacheMiss()

	chunks, err := s.retrieve(ctx, ownerID, documentID, question, s.cfg.SearchTopK, s.cfg.MinSimilarity)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRetrievedChunks(len(chunks))

	answer := &model.Answer{}
	if len(chunks) == 0 {
		answer.Text = noContextAnswer
	} else {
		history, err := s.cache.GetConversation(ctx, ownerID, sessionID)
		if err != nil {
			s.logger.Warn("failed to load conversation memory", "session_id", sessionID, "error", err)
		}

		prompt := buildPrompt(question, chunks, history)
		text, err := s.chatModel.Generate(ctx, answerSystemPrompt, prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate answer: %w", err)
		}
		answer.Text = text
		answer.Sources = sourceRefs(chunks)
	}

	turn := &model.ChatTurn{
		Question:  question,
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Model:     s.chatModel.ModelName(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.cache.AppendTurn(ctx, ownerID, sessionID, turn, s.cfg.ConversationMaxTurns, s.cfg.ConversationTTL); err != nil {
		s.logger.Warn("failed to append conversation turn", "session_id", sessionID, "error", err)
	}

	if len(chunks) > 0 {
		if err := s.cache.StoreAnswer(ctx, ownerID, question, documentID, answer, s.cfg.AnswerCacheTTL); err != nil {
			s.logger.Warn("failed to cache answer", "error", err)
		}
	}

	s.recordEvent(ctx, cache.EventChat, ownerID, sessionID)
	s.metrics.ObserveChatDuration(time.Since(start))
	return answer, nil
}

// Summarize produces a cached summary of a ready document.
func (s *ChatService) Summarize(ctx context.Context, ownerID, documentID string) (*model.Answer, error) {
	doc, err := s.repo.GetDocument(ctx, ownerID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if !doc.IsSearchable() {
		return nil, ErrDocumentNotReady
	}

	// Summaries ride the answer cache under a reserved question key.
	cacheKey := "summary"
	if cached, err := s.cache.GetAnswer(ctx, ownerID, cacheKey, documentID); err == nil && cached != nil {
		s.metrics.IncAnswerCacheHit()
		return cached, nil
	}

	// No similarity floor: a summary wants broad coverage, not precision.
	chunks, err := s.retrieve(ctx, ownerID, documentID, summaryQuery, s.cfg.SummaryTopK, -1)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrDocumentNotReady
	}

	prompt := buildPrompt(summaryQuery, chunks, nil)
	text, err := s.chatModel.Generate(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	answer := &model.Answer{Text: text, Sources: sourceRefs(chunks)}
	if err := s.cache.StoreAnswer(ctx, ownerID, cacheKey, documentID, answer, s.cfg.SummaryCacheTTL); err != nil {
		s.logger.Warn("failed to cache summary", "document_id", documentID, "error", err)
	}

	s.recordEvent(ctx, cache.EventSummary, ownerID, documentID)
	return answer, nil
}

// History returns the stored conversation for a session, oldest first.
func (s *ChatService) History(ctx context.Context, ownerID, sessionID string) ([]model.ChatTurn, error) {
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}
	return s.cache.GetConversation(ctx, ownerID, sessionID)
}

// ClearHistory wipes a session's conversation memory.
func (s *ChatService) ClearHistory(ctx context.Context, ownerID, sessionID string) error {
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}
	return s.cache.ClearConversation(ctx, ownerID, sessionID)
}

// resolveScope determines the session and optional document scope for a
// question. An explicit DocumentID wins; otherwise a document-bound
// session supplies its document.
func (s *ChatService) resolveScope(ctx context.Context, ownerID string, input AskInput) (sessionID, documentID string, err error) {
	sessionID = input.SessionID
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}

	documentID = input.DocumentID
	if documentID == "" {
		session, serr := s.cache.GetSession(ctx, sessionID)
		if serr == nil && session != nil && session.OwnerID == ownerID {
			documentID = session.DocumentID
		}
	}

	if documentID != "" {
		doc, derr := s.repo.GetDocument(ctx, ownerID, documentID)
		if derr != nil {
			if errors.Is(derr, repository.ErrDocumentNotFound) {
				return "", "", ErrDocumentNotFound
			}
			return "", "", derr
		}
		if !doc.IsSearchable() {
			return "", "", ErrDocumentNotReady
		}
	}

	return sessionID, documentID, nil
}

// retrieve embeds the query and searches the vector store.
func (s *ChatService) retrieve(ctx context.Context, ownerID, documentID, query string, k int, minScore float32) ([]model.ScoredChunk, error) {
	var vector []float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = s.embedder.EmbedQuery(ctx, query)
		return embedErr
	}, embedMaxAttempts, embedBaseDelay)
	if err != nil {
		s.metrics.IncEmbeddingCalls("failed")
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	s.metrics.IncEmbeddingCalls("success")

	chunks, err := s.store.Search(ctx, vector, k, minScore, vectorstore.Filter{
		OwnerID:    ownerID,
		DocumentID: documentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	return chunks, nil
}

func (s *ChatService) recordEvent(ctx context.Context, eventType, ownerID, detail string) {
	if err := s.cache.RecordEvent(ctx, cache.AnalyticsEvent{
		Type: eventType, UserID: ownerID, Detail: detail,
	}); err != nil {
		s.logger.Warn("failed to record analytics event", "type", eventType, "error", err)
	}
}

// buildPrompt assembles the user prompt: recent conversation turns,
// retrieved excerpts trimmed to the token budget, then the question.
func buildPrompt(question string, chunks []model.ScoredChunk, history []model.ChatTurn) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Context excerpts:\n")
	budget := contextTokenBudget
	for _, sc := range chunks {
		cost := sc.Chunk.TokenCount
		if cost == 0 {
			cost = document.CountTokens(sc.Chunk.Content)
		}
		if cost > budget {
			break
		}
		budget -= cost
		fmt.Fprintf(&b, "[Source: %s, chunk %d]\n%s\n\n",
			sc.Chunk.Filename, sc.Chunk.Index, sc.Chunk.Content)
	}

	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

// sourceRefs converts scored chunks into answer source citations.
func sourceRefs(chunks []model.ScoredChunk) []model.SourceRef {
	refs := make([]model.SourceRef, 0, len(chunks))
	for _, sc := range chunks {
		refs = append(refs, model.SourceRef{
			Filename:   sc.Chunk.Filename,
			ChunkIndex: sc.Chunk.Index,
			Score:      sc.Score,
		})
	}
	return refs
}
