package service

import (
	"context"
	"fmt"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

// TrendingReader reads and clears the trending titles ranking
type TrendingReader interface {
	GetTop(ctx context.Context, n int) ([]domain.TrendingTitle, error)
	Reset(ctx context.Context) error
}

// EventReader reads the lookup audit log
type EventReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.LookupEvent, error)
	CountByKind(ctx context.Context) (map[domain.LookupKind]int64, error)
}

// StatsService serves aggregate lookup statistics. Either backend may be
// nil, in which case its queries return domain.ErrFeatureDisabled.
type StatsService struct {
	trending TrendingReader
	events   EventReader
	config   *config.TrendingConfig
}

// NewStatsService creates a new stats service
func NewStatsService(trending TrendingReader, events EventReader, cfg *config.TrendingConfig) *StatsService {
	return &StatsService{
		trending: trending,
		events:   events,
		config:   cfg,
	}
}

func (s *StatsService) clampLimit(n int) int {
	if n <= 0 {
		n = s.config.DefaultLimit
	}
	if n > s.config.MaxLimit {
		n = s.config.MaxLimit
	}
	return n
}

// TopTitles returns the most looked-up titles
func (s *StatsService) TopTitles(ctx context.Context, limit int) ([]domain.TrendingTitle, error) {
	if s.trending == nil {
		return nil, domain.ErrFeatureDisabled
	}
	titles, err := s.trending.GetTop(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("getting trending titles: %w", err)
	}
	return titles, nil
}

// ResetTrending clears the trending titles ranking
func (s *StatsService) ResetTrending(ctx context.Context) error {
	if s.trending == nil {
		return domain.ErrFeatureDisabled
	}
	if err := s.trending.Reset(ctx); err != nil {
		return fmt.Errorf("resetting trending titles: %w", err)
	}
	return nil
}

// RecentLookups returns the newest audit rows
func (s *StatsService) RecentLookups(ctx context.Context, limit int) ([]domain.LookupEvent, error) {
	if s.events == nil {
		return nil, domain.ErrFeatureDisabled
	}
	events, err := s.events.ListRecent(ctx, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing recent lookups: %w", err)
	}
	return events, nil
}

// LookupStats returns audit row counts per kind
func (s *StatsService) LookupStats(ctx context.Context) (*domain.LookupStats, error) {
	if s.events == nil {
		return nil, domain.ErrFeatureDisabled
	}
	byKind, err := s.events.CountByKind(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting lookups: %w", err)
	}

	stats := &domain.LookupStats{ByKind: byKind}
	for _, n := range byKind {
		stats.Total += n
	}
	return stats, nil
}
