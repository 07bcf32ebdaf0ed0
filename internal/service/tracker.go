package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/steam-tracker/internal/domain"
)

// EventPublisher receives a LookupEvent after each successful lookup.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LookupEvent) error
}

// Tracker is the entry point used by the HTTP layer. It resolves handles,
// dispatches to the lookup services and publishes lookup events.
type Tracker struct {
	resolver     *IdentityResolver
	library      *LibraryLister
	achievements *AchievementAggregator
	profiles     *ProfileService
	guides       *GuideLocator
	publisher    EventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// NewTracker creates a new tracker. publisher may be nil.
func NewTracker(
	resolver *IdentityResolver,
	library *LibraryLister,
	achievements *AchievementAggregator,
	profiles *ProfileService,
	guides *GuideLocator,
	publisher EventPublisher,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		resolver:     resolver,
		library:      library,
		achievements: achievements,
		profiles:     profiles,
		guides:       guides,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Library resolves handle and lists the player's games
func (t *Tracker) Library(ctx context.Context, handle string) ([]domain.OwnedTitle, error) {
	start := t.now()

	playerID, err := t.resolver.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}

	titles, err := t.library.ListOwnedTitles(ctx, playerID)
	if err != nil {
		return nil, err
	}

	t.publish(ctx, domain.LookupEvent{
		Kind:     domain.LookupKindLibrary,
		Handle:   handle,
		PlayerID: playerID,
		Found:    len(titles) > 0,
	}, start)
	return titles, nil
}

// Achievements resolves handle and aggregates achievements for titleID. The
// only errors are a malformed titleID and a failed resolution.
func (t *Tracker) Achievements(ctx context.Context, handle, titleID string) (domain.AggregateResult, error) {
	start := t.now()

	if !domain.ValidTitleID(titleID) {
		return domain.AggregateResult{}, fmt.Errorf("%w: title id must be a numeric app id", domain.ErrInvalidRequest)
	}

	playerID, err := t.resolver.Resolve(ctx, handle)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	result := t.achievements.GetAchievements(ctx, playerID, titleID)

	t.publish(ctx, domain.LookupEvent{
		Kind:     domain.LookupKindAchievements,
		Handle:   handle,
		PlayerID: playerID,
		TitleID:  titleID,
		GameName: result.GameName,
		Found:    !result.IsEmpty(),
	}, start)
	return result, nil
}

// Profile resolves handle and returns the public profile
func (t *Tracker) Profile(ctx context.Context, handle string) (*domain.PlayerSummary, error) {
	start := t.now()

	playerID, err := t.resolver.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}

	summary, err := t.profiles.GetPlayerSummary(ctx, playerID)
	if err != nil {
		return nil, err
	}

	t.publish(ctx, domain.LookupEvent{
		Kind:     domain.LookupKindProfile,
		Handle:   handle,
		PlayerID: playerID,
		Found:    true,
	}, start)
	return summary, nil
}

// Guide finds a strategy guide URL for a game name
func (t *Tracker) Guide(ctx context.Context, titleName string) (string, error) {
	start := t.now()

	link, err := t.guides.FindGuideURL(ctx, titleName)
	if err != nil {
		return "", err
	}

	t.publish(ctx, domain.LookupEvent{
		Kind:     domain.LookupKindGuide,
		GameName: titleName,
		Found:    true,
	}, start)
	return link, nil
}

// publish stamps, bounds and sends event. Failures are logged and never
// reach the caller.
func (t *Tracker) publish(ctx context.Context, event domain.LookupEvent, start time.Time) {
	if t.publisher == nil {
		return
	}

	now := t.now()
	event = event.Bounded()
	event.ID = uuid.New().String()
	event.OccurredAt = now.UTC()
	event.DurationMS = now.Sub(start).Milliseconds()

	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.Warn("failed to publish lookup event",
			"kind", event.Kind,
			"event_id", event.ID,
			"error", err,
		)
	}
}
