package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/steam-tracker/internal/config"
)

// Pruner deletes audit rows older than a cutoff
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker periodically prunes the lookup audit log
type RetentionWorker struct {
	store   Pruner
	config  *config.RetentionConfig
	logger  *slog.Logger
	now     func() time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewRetentionWorker creates a new retention worker
func NewRetentionWorker(store Pruner, cfg *config.RetentionConfig, logger *slog.Logger) *RetentionWorker {
	return &RetentionWorker{
		store:  store,
		config: cfg,
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background pruning loop
func (w *RetentionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("retention worker started",
		"interval", w.config.Interval,
		"max_age", w.config.MaxAge,
	)

	go w.run(ctx)
	return nil
}

// Stop stops the background pruning loop
func (w *RetentionWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("retention worker stopped")
	return nil
}

func (w *RetentionWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce deletes events older than the configured max age and returns the
// number removed. Errors are logged.
func (w *RetentionWorker) RunOnce(ctx context.Context) int64 {
	start := w.now()
	cutoff := start.Add(-w.config.MaxAge)

	deleted, err := w.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to prune lookup events", "cutoff", cutoff, "error", err)
		return 0
	}

	w.logger.Info("pruned lookup events",
		"deleted", deleted,
		"cutoff", cutoff,
		"duration", w.now().Sub(start),
	)
	return deleted
}

// IsRunning returns whether the worker is currently running
func (w *RetentionWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
