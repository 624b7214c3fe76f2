package service

import (
	"context"

	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"
)

// StatsService exposes the read-only admin analytics.
type StatsService struct {
	store *store.Store
}

// NewStatsService creates a new stats service
func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

// GetStats aggregates the dashboard snapshot
func (s *StatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.GetStats")
	defer span.End()

	return s.store.GetStats(ctx)
}
