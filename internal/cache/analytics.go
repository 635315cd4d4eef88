package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Analytics counters live in Redis so the stats endpoint works without a
// database round trip. Counters are fire-and-forget on the hot path.
const (
	analyticsCountPrefix = "analytics:count:"
	analyticsRecentKey   = "analytics:recent"

	// maxRecentEvents bounds the recent-events list.
	maxRecentEvents = 50
)

// Well-known analytics event types.
const (
	EventUpload    = "upload"
	EventChat      = "chat"
	EventCacheHit  = "cache_hit"
	EventSummary   = "summary"
	EventIngestErr = "ingest_error"
)

// AnalyticsEvent is a single recorded usage event.
type AnalyticsEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordEvent increments the per-type counter and appends to the capped
// recent-events list. Errors are returned but callers on the request path
// typically log and continue.
func (c *Cache) RecordEvent(ctx context.Context, event AnalyticsEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, analyticsCountPrefix+event.Type)
	pipe.RPush(ctx, analyticsRecentKey, data)
	pipe.LTrim(ctx, analyticsRecentKey, -maxRecentEvents, -1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record analytics event: %w", err)
	}
	return nil
}

// EventCounts returns the counter value for each requested event type.
func (c *Cache) EventCounts(ctx context.Context, types ...string) (map[string]int64, error) {
	keys := make([]string, len(types))
	for i, t := range types {
		keys[i] = analyticsCountPrefix + t
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read analytics counters: %w", err)
	}

	counts := make(map[string]int64, len(types))
	for i, v := range values {
		var n int64
		if s, ok := v.(string); ok {
			n, _ = strconv.ParseInt(s, 10, 64)
		}
		counts[types[i]] = n
	}
	return counts, nil
}

// RecentEvents returns the most recent usage events, oldest first.
func (c *Cache) RecentEvents(ctx context.Context, limit int) ([]AnalyticsEvent, error) {
	if limit <= 0 || limit > maxRecentEvents {
		limit = maxRecentEvents
	}

	raw, err := c.client.LRange(ctx, analyticsRecentKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}

	events := make([]AnalyticsEvent, 0, len(raw))
	for _, item := range raw {
		var event AnalyticsEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
