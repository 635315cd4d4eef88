package service

import (
	"context"
	"fmt"

	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/repository"
	"github.com/docchat/docchat/internal/vectorstore"
)

// Stats aggregates service-wide usage numbers for the stats endpoint.
type Stats struct {
	Users     int64              `json:"users"`
	Documents DocumentStats      `json:"documents"`
	Vectors   *vectorstore.Stats `json:"vectors"`
	Events    map[string]int64   `json:"events"`
}

// DocumentStats breaks documents down by status.
type DocumentStats struct {
	Total      int64 `json:"total"`
	Ready      int64 `json:"ready"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
	Chunks     int64 `json:"chunks"`
}

// StatsService assembles usage statistics from Postgres, the vector
// store and Redis counters.
type StatsService struct {
	repo  *repository.Repository
	store vectorstore.Store
	cache *cache.Cache
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo *repository.Repository, store vectorstore.Store, c *cache.Cache) *StatsService {
	return &StatsService{repo: repo, store: store, cache: c}
}

// Collect gathers current statistics.
func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	docCounts, err := s.repo.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	vectorStats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector stats: %w", err)
	}

	events, err := s.cache.EventCounts(ctx,
		cache.EventUpload, cache.EventChat, cache.EventCacheHit,
		cache.EventSummary, cache.EventIngestErr)
	if err != nil {
		return nil, fmt.Errorf("failed to read event counters: %w", err)
	}

	return &Stats{
		Users: users,
		Documents: DocumentStats{
			Total:      docCounts.Total,
			Ready:      docCounts.Ready,
			Processing: docCounts.Processing,
			Failed:     docCounts.Failed,
			Chunks:     docCounts.Chunks,
		},
		Vectors: vectorStats,
		Events:  events,
	}, nil
}
