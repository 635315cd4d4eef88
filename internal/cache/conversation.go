package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docchat/docchat/internal/model"
)

// Conversation memory keys. Each session is a Redis list of JSON-encoded
// turns, trimmed to the most recent maxTurns and refreshed with a TTL on
// every append.
const (
	conversationKeyPrefix = "convo:"
	sessionKeyPrefix      = "session:"
)

func conversationKey(ownerID, sessionID string) string {
	// Owner-scoped so two users' "default" sessions never collide.
	return conversationKeyPrefix + ownerID + ":" + sessionID
}

// AppendTurn pushes a chat turn onto the session's conversation list,
// trims to the last maxTurns entries and refreshes the TTL.
func (c *Cache) AppendTurn(ctx context.Context, ownerID, sessionID string, turn *model.ChatTurn, maxTurns int, ttl time.Duration) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal chat turn: %w", err)
	}

	key := conversationKey(ownerID, sessionID)
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-maxTurns), -1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

// GetConversation returns all stored turns for a session, oldest first.
func (c *Cache) GetConversation(ctx context.Context, ownerID, sessionID string) ([]model.ChatTurn, error) {
	raw, err := c.client.LRange(ctx, conversationKey(ownerID, sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	turns := make([]model.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn model.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// Skip corrupted entries rather than failing the whole read.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// ClearConversation deletes a session's conversation memory.
func (c *Cache) ClearConversation(ctx context.Context, ownerID, sessionID string) error {
	return c.client.Del(ctx, conversationKey(ownerID, sessionID)).Err()
}

// StoreSession saves session metadata with a TTL.
func (c *Cache) StoreSession(ctx context.Context, session *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return c.client.Set(ctx, sessionKeyPrefix+session.ID, data, ttl).Err()
}

// GetSession retrieves session metadata. Returns nil on miss, which callers
// treat as a general (unscoped) session.
func (c *Cache) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, nil //nolint:nilerr
	}
	return &session, nil
}

// DeleteSession removes session metadata.
func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
