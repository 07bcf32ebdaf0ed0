package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/steam-tracker/internal/domain"
)

// EventStore persists lookup events
type EventStore interface {
	RecordEvents(ctx context.Context, events []domain.LookupEvent) error
}

// TrendingCounter counts achievement lookups per title
type TrendingCounter interface {
	IncrementTitles(ctx context.Context, counts map[string]int64, names map[string]string) error
}

// Broadcaster pushes lookup events to live subscribers
type Broadcaster interface {
	BroadcastLookup(event domain.LookupEvent)
}

// Recorder fans lookup events out to the audit store, the trending counter
// and the websocket hub. Any of them may be nil.
type Recorder struct {
	store    EventStore
	trending TrendingCounter
	hub      Broadcaster
	logger   *slog.Logger
}

// NewRecorder creates a new recorder
func NewRecorder(store EventStore, trending TrendingCounter, hub Broadcaster, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:    store,
		trending: trending,
		hub:      hub,
		logger:   logger,
	}
}

// Publish records a single event
func (r *Recorder) Publish(ctx context.Context, event domain.LookupEvent) error {
	return r.RecordEvents(ctx, []domain.LookupEvent{event})
}

// RecordEvents records a batch of events. Every sink is attempted; their
// errors are joined.
func (r *Recorder) RecordEvents(ctx context.Context, events []domain.LookupEvent) error {
	if len(events) == 0 {
		return nil
	}

	var errs []error

	if r.store != nil {
		if err := r.store.RecordEvents(ctx, events); err != nil {
			errs = append(errs, fmt.Errorf("storing lookup events: %w", err))
		}
	}

	if r.trending != nil {
		counts, names := titleCounts(events)
		if len(counts) > 0 {
			if err := r.trending.IncrementTitles(ctx, counts, names); err != nil {
				errs = append(errs, fmt.Errorf("updating trending titles: %w", err))
			}
		}
	}

	if r.hub != nil {
		for _, event := range events {
			r.hub.BroadcastLookup(event)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.logger.Debug("recorded lookup events", "count", len(events))
	return nil
}

// titleCounts tallies achievement lookups per title in a batch.
func titleCounts(events []domain.LookupEvent) (map[string]int64, map[string]string) {
	counts := make(map[string]int64)
	names := make(map[string]string)
	for _, e := range events {
		if e.Kind != domain.LookupKindAchievements || e.TitleID == "" {
			continue
		}
		counts[e.TitleID]++
		if e.GameName != "" {
			names[e.TitleID] = e.GameName
		}
	}
	return counts, names
}
