package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/model"
)

const answerKeyPrefix = "answer:"

// answerKey derives a cache key from the question text and the document
// scope. Questions are hashed so arbitrary user input never lands in a
// Redis key verbatim.
func answerKey(ownerID, question, documentID string) string {
	scope := documentID
	if scope == "" {
		scope = "general"
	}
	return fmt.Sprintf("%s%s:%s:%s", answerKeyPrefix, ownerID, scope, auth.QuickHash(question))
}

// StoreAnswer caches a generated answer for repeated questions.
func (c *Cache) StoreAnswer(ctx context.Context, ownerID, question, documentID string, answer *model.Answer, ttl time.Duration) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	return c.client.Set(ctx, answerKey(ownerID, question, documentID), data, ttl).Err()
}

// GetAnswer returns a cached answer, or nil on miss.
func (c *Cache) GetAnswer(ctx context.Context, ownerID, question, documentID string) (*model.Answer, error) {
	data, err := c.client.Get(ctx, answerKey(ownerID, question, documentID)).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, nil //nolint:nilerr
	}
	answer.Cached = true
	return &answer, nil
}

// InvalidateDocumentAnswers removes cached answers scoped to a document,
// used when the document is deleted or re-ingested.
func (c *Cache) InvalidateDocumentAnswers(ctx context.Context, ownerID, documentID string) error {
	pattern := fmt.Sprintf("%s%s:%s:*", answerKeyPrefix, ownerID, documentID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("invalidate answer cache: %w", err)
		}
	}
	return iter.Err()
}
