package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/steam"
)

// LibraryLister lists a player's owned games
type LibraryLister struct {
	steam    SteamAPI
	iconBase string
	logger   *slog.Logger
}

// NewLibraryLister creates a new library lister
func NewLibraryLister(steam SteamAPI, cfg *config.SteamConfig, logger *slog.Logger) *LibraryLister {
	return &LibraryLister{
		steam:    steam,
		iconBase: cfg.GameIconBase,
		logger:   logger,
	}
}

// ListOwnedTitles returns the player's games ordered by playtime, most played
// first. Games with equal playtime keep Steam's order. A profile with no
// visible games yields an empty slice, not an error.
func (l *LibraryLister) ListOwnedTitles(ctx context.Context, playerID string) ([]domain.OwnedTitle, error) {
	games, err := l.steam.GetOwnedGames(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing owned games: %w", err)
	}

	titles := make([]domain.OwnedTitle, 0, len(games))
	skipped := 0
	for _, game := range games {
		title, ok := l.toOwnedTitle(game)
		if !ok {
			skipped++
			continue
		}
		titles = append(titles, title)
	}
	if skipped > 0 {
		l.logger.Warn("skipped malformed owned games",
			"player_id", playerID,
			"skipped", skipped,
		)
	}

	sort.SliceStable(titles, func(i, j int) bool {
		return titles[i].PlaytimeForever > titles[j].PlaytimeForever
	})

	return titles, nil
}

// toOwnedTitle applies the documented defaults. Entries without an appid or
// that failed to decode are rejected.
func (l *LibraryLister) toOwnedTitle(game steam.OwnedGame) (domain.OwnedTitle, bool) {
	if game.Malformed || game.AppID == nil {
		return domain.OwnedTitle{}, false
	}

	title := domain.OwnedTitle{
		AppID: *game.AppID,
		Name:  domain.UnknownGameName,
	}
	if game.Name != nil {
		title.Name = *game.Name
	}
	if game.PlaytimeForever != nil && *game.PlaytimeForever > 0 {
		title.PlaytimeForever = *game.PlaytimeForever
	}
	if game.ImgIconURL != nil {
		title.ImgIconURL = *game.ImgIconURL
	}
	if title.ImgIconURL != "" && l.iconBase != "" {
		title.IconURL = fmt.Sprintf(l.iconBase, title.AppID, title.ImgIconURL)
	}
	return title, true
}
