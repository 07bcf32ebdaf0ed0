package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

const (
	trendingKey      = "trending:titles"
	trendingNamesKey = "trending:titles:names"
)

// TrendingStore counts achievement lookups per title in a sorted set
type TrendingStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewTrendingStore connects to Redis and returns a trending store
func NewTrendingStore(cfg *config.RedisConfig, logger *slog.Logger) (*TrendingStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &TrendingStore{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *TrendingStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *TrendingStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// IncrementTitles adds counts to each title's score and records display
// names, in one pipeline.
func (s *TrendingStore) IncrementTitles(ctx context.Context, counts map[string]int64, names map[string]string) error {
	if len(counts) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for titleID, n := range counts {
		pipe.ZIncrBy(ctx, trendingKey, float64(n), titleID)
	}
	if len(names) > 0 {
		pipe.HSet(ctx, trendingNamesKey, nameFields(names))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("incrementing trending titles: %w", err)
	}
	return nil
}

// GetTop returns the n most looked-up titles, highest count first
func (s *TrendingStore) GetTop(ctx context.Context, n int) ([]domain.TrendingTitle, error) {
	if n <= 0 {
		return []domain.TrendingTitle{}, nil
	}

	results, err := s.client.ZRevRangeWithScores(ctx, trendingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top titles: %w", err)
	}
	if len(results) == 0 {
		return []domain.TrendingTitle{}, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = fmt.Sprint(z.Member)
	}

	names, err := s.client.HMGet(ctx, trendingNamesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("getting title names: %w", err)
	}

	return toTrendingTitles(results, names), nil
}

// Reset clears all trending counts and names
func (s *TrendingStore) Reset(ctx context.Context) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, trendingKey)
	pipe.Del(ctx, trendingNamesKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("resetting trending titles: %w", err)
	}
	s.logger.Info("trending titles reset")
	return nil
}

func nameFields(names map[string]string) map[string]interface{} {
	fields := make(map[string]interface{}, len(names))
	for id, name := range names {
		fields[id] = name
	}
	return fields
}

// toTrendingTitles pairs sorted set members with their names. names is
// positional with results; missing names are nil.
func toTrendingTitles(results []redis.Z, names []interface{}) []domain.TrendingTitle {
	titles := make([]domain.TrendingTitle, len(results))
	for i, z := range results {
		titles[i] = domain.TrendingTitle{
			Rank:    int64(i + 1),
			TitleID: fmt.Sprint(z.Member),
			Lookups: int64(z.Score),
		}
		if i < len(names) {
			if name, ok := names[i].(string); ok {
				titles[i].Name = name
			}
		}
	}
	return titles
}
