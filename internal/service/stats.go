package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patinho/quack-board/internal/model"
	"github.com/patinho/quack-board/internal/repository"
)

// StatsService computes the dashboard aggregate by scanning the
// repositories. Pure read.
type StatsService struct {
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{stats: stats, logger: logger}
}

// Stats returns total questions, total answers, accepted-answer count and
// the language histogram (count descending). An empty store yields zeroes
// and an empty — not nil — language list.
func (s *StatsService) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to compute stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	return stats, nil
}
