package service

import (
	"context"

	"github.com/steam-tracker/internal/steam"
)

// SteamAPI is the subset of the Steam Web API the services depend on.
// *steam.Client implements it.
type SteamAPI interface {
	ResolveVanityURL(ctx context.Context, vanity string) (*steam.VanityResponse, error)
	GetOwnedGames(ctx context.Context, steamID string) ([]steam.OwnedGame, error)
	GetPlayerAchievements(ctx context.Context, steamID, appID string) (*steam.PlayerStats, error)
	GetSchemaForGame(ctx context.Context, appID string) (*steam.GameSchema, error)
	GetGlobalAchievementPercentages(ctx context.Context, appID string) ([]steam.GlobalPercentage, error)
	GetPlayerSummaries(ctx context.Context, steamIDs ...string) ([]steam.PlayerSummary, error)
}
