package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steam-tracker/internal/domain"
)

// ProfileService looks up public Steam profiles
type ProfileService struct {
	steam  SteamAPI
	logger *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(steam SteamAPI, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		steam:  steam,
		logger: logger,
	}
}

// GetPlayerSummary returns the profile for a canonical Steam ID
func (s *ProfileService) GetPlayerSummary(ctx context.Context, playerID string) (*domain.PlayerSummary, error) {
	players, err := s.steam.GetPlayerSummaries(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting player summary: %w", err)
	}

	for _, p := range players {
		if p.SteamID != playerID {
			continue
		}
		return &domain.PlayerSummary{
			SteamID:     p.SteamID,
			DisplayName: p.PersonaName,
			AvatarURL:   p.AvatarFull,
			ProfileURL:  p.ProfileURL,
		}, nil
	}

	return nil, domain.ErrPlayerNotFound
}
