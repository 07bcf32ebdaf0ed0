package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/steam"
)

// fakeSteam is a SteamAPI whose responses are set per test. Unset methods
// return zero values.
type fakeSteam struct {
	resolveCalls atomic.Int32

	resolve     func(vanity string) (*steam.VanityResponse, error)
	ownedGames  func(steamID string) ([]steam.OwnedGame, error)
	playerStats func(steamID, appID string) (*steam.PlayerStats, error)
	schema      func(appID string) (*steam.GameSchema, error)
	percentages func(appID string) ([]steam.GlobalPercentage, error)
	summaries   func(steamIDs ...string) ([]steam.PlayerSummary, error)
}

func (f *fakeSteam) ResolveVanityURL(_ context.Context, vanity string) (*steam.VanityResponse, error) {
	f.resolveCalls.Add(1)
	if f.resolve == nil {
		return &steam.VanityResponse{}, nil
	}
	return f.resolve(vanity)
}

func (f *fakeSteam) GetOwnedGames(_ context.Context, steamID string) ([]steam.OwnedGame, error) {
	if f.ownedGames == nil {
		return nil, nil
	}
	return f.ownedGames(steamID)
}

func (f *fakeSteam) GetPlayerAchievements(_ context.Context, steamID, appID string) (*steam.PlayerStats, error) {
	if f.playerStats == nil {
		return nil, nil
	}
	return f.playerStats(steamID, appID)
}

func (f *fakeSteam) GetSchemaForGame(_ context.Context, appID string) (*steam.GameSchema, error) {
	if f.schema == nil {
		return nil, nil
	}
	return f.schema(appID)
}

func (f *fakeSteam) GetGlobalAchievementPercentages(_ context.Context, appID string) ([]steam.GlobalPercentage, error) {
	if f.percentages == nil {
		return nil, nil
	}
	return f.percentages(appID)
}

func (f *fakeSteam) GetPlayerSummaries(_ context.Context, steamIDs ...string) ([]steam.PlayerSummary, error) {
	if f.summaries == nil {
		return nil, nil
	}
	return f.summaries(steamIDs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSteamConfig() *config.SteamConfig {
	cfg := config.DefaultConfig()
	return &cfg.Steam
}

func ptr[T any](v T) *T {
	return &v
}

func resolvesTo(steamID string) func(string) (*steam.VanityResponse, error) {
	return func(string) (*steam.VanityResponse, error) {
		var resp steam.VanityResponse
		resp.Response.Success = 1
		resp.Response.SteamID = steamID
		return &resp, nil
	}
}

func statsWith(achievements ...steam.PlayerAchievement) func(string, string) (*steam.PlayerStats, error) {
	records := append([]steam.PlayerAchievement{}, achievements...)
	return func(string, string) (*steam.PlayerStats, error) {
		return &steam.PlayerStats{Success: ptr(true), Achievements: records}, nil
	}
}

func schemaWith(name string, achievements ...steam.SchemaAchievement) func(string) (*steam.GameSchema, error) {
	return func(string) (*steam.GameSchema, error) {
		return &steam.GameSchema{
			GameName:           name,
			AvailableGameStats: &steam.GameStats{Achievements: achievements},
		}, nil
	}
}
