package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

// Repository stores the lookup audit log in PostgreSQL
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lookup_events (
		id UUID PRIMARY KEY,
		kind VARCHAR(20) NOT NULL,
		handle VARCHAR(255),
		player_id VARCHAR(32),
		title_id VARCHAR(32),
		game_name VARCHAR(255),
		found BOOLEAN NOT NULL DEFAULT FALSE,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lookup_events_occurred ON lookup_events(occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_lookup_events_title ON lookup_events(title_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_lookup_events_kind ON lookup_events(kind)`,
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	for _, migration := range migrations {
		if _, err := r.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

const insertEventQuery = `
	INSERT INTO lookup_events (id, kind, handle, player_id, title_id, game_name, found, duration_ms, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING
`

// RecordEvents inserts lookup events in one batch. Redelivered events are
// ignored.
func (r *Repository) RecordEvents(ctx context.Context, events []domain.LookupEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertEventQuery, eventArgs(e)...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("recording lookup events: %w", err)
		}
	}
	return nil
}

// ListRecent returns the newest lookup events first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.LookupEvent, error) {
	query := `
		SELECT id::text, kind, COALESCE(handle, ''), COALESCE(player_id, ''), COALESCE(title_id, ''),
			   COALESCE(game_name, ''), found, duration_ms, occurred_at
		FROM lookup_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing lookup events: %w", err)
	}
	defer rows.Close()

	events := []domain.LookupEvent{}
	for rows.Next() {
		var e domain.LookupEvent
		err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.Handle,
			&e.PlayerID,
			&e.TitleID,
			&e.GameName,
			&e.Found,
			&e.DurationMS,
			&e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning lookup event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing lookup events: %w", err)
	}
	return events, nil
}

// CountByKind returns the number of recorded events per lookup kind
func (r *Repository) CountByKind(ctx context.Context) (map[domain.LookupKind]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT kind, COUNT(*) FROM lookup_events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("counting lookup events: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.LookupKind]int64)
	for rows.Next() {
		var kind domain.LookupKind
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning lookup count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counting lookup events: %w", err)
	}
	return counts, nil
}

// DeleteOlderThan removes events that occurred before cutoff and returns
// how many were removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM lookup_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old lookup events: %w", err)
	}
	return result.RowsAffected(), nil
}

// eventArgs returns the insert arguments for e. Empty optional fields are
// stored as NULL.
func eventArgs(e domain.LookupEvent) []interface{} {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return []interface{}{
		e.ID,
		string(e.Kind),
		nullable(e.Handle),
		nullable(e.PlayerID),
		nullable(e.TitleID),
		nullable(e.GameName),
		e.Found,
		e.DurationMS,
		occurred,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
