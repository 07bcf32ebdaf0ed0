package service

import (
	"context"
	"log/slog"

	"github.com/steam-tracker/internal/domain"
)

// IsSteamID reports whether handle is already a canonical numeric Steam ID.
func IsSteamID(handle string) bool {
	if handle == "" {
		return false
	}
	for i := 0; i < len(handle); i++ {
		if handle[i] < '0' || handle[i] > '9' {
			return false
		}
	}
	return true
}

// IdentityResolver maps player handles to Steam IDs
type IdentityResolver struct {
	steam  SteamAPI
	logger *slog.Logger
}

// NewIdentityResolver creates a new identity resolver
func NewIdentityResolver(steam SteamAPI, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{
		steam:  steam,
		logger: logger,
	}
}

// Resolve returns the Steam ID for handle. Numeric handles are returned as
// is; anything else costs exactly one vanity lookup. Every failure is a
// *domain.ResolutionError.
func (r *IdentityResolver) Resolve(ctx context.Context, handle string) (string, error) {
	if IsSteamID(handle) {
		return handle, nil
	}
	if handle == "" {
		return "", &domain.ResolutionError{Handle: handle, Err: domain.ErrInvalidRequest}
	}

	resp, err := r.steam.ResolveVanityURL(ctx, handle)
	if err != nil {
		return "", &domain.ResolutionError{Handle: handle, Err: err}
	}

	if resp.Response.Success != 1 || resp.Response.SteamID == "" {
		r.logger.Debug("vanity url did not resolve",
			"handle", handle,
			"success", resp.Response.Success,
			"message", resp.Response.Message,
		)
		return "", &domain.ResolutionError{Handle: handle}
	}

	return resp.Response.SteamID, nil
}
