// Package steam is a thin client for the Steam Web API. It decodes the raw
// payloads into typed records; interpreting them is left to the service layer.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

const maxDrainBytes = 64 << 10

// Client talks to api.steampowered.com
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	logger     *slog.Logger
}

// NewClient creates a new Steam Web API client
func NewClient(cfg *config.SteamConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		logger:     logger,
	}
}

// ResolveVanityURL maps a vanity name to a Steam ID
func (c *Client) ResolveVanityURL(ctx context.Context, vanity string) (*VanityResponse, error) {
	params := url.Values{}
	params.Set("vanityurl", vanity)

	var out VanityResponse
	if err := c.get(ctx, "resolve vanity url", "/ISteamUser/ResolveVanityURL/v0001/", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOwnedGames returns the raw owned games list. A nil slice with a nil
// error means the payload had no games list (private profile or no games).
// Entries that fail to decode come back flagged Malformed.
func (c *Client) GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "true")

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := c.get(ctx, "get owned games", "/IPlayerService/GetOwnedGames/v0001/", params, &envelope); err != nil {
		return nil, err
	}

	var body ownedGamesBody
	if !decodeNested(envelope.Response, &body) {
		return nil, nil
	}
	return decodeOwnedGames(body.Games), nil
}

// GetPlayerAchievements returns the player's unlock records for an app. A nil
// result with a nil error means the payload had no playerstats object.
func (c *Client) GetPlayerAchievements(ctx context.Context, steamID, appID string) (*PlayerStats, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("appid", appID)
	params.Set("l", c.language)

	var envelope struct {
		PlayerStats json.RawMessage `json:"playerstats"`
	}
	if err := c.get(ctx, "get player achievements", "/ISteamUserStats/GetPlayerAchievements/v0001/", params, &envelope); err != nil {
		return nil, err
	}

	var stats PlayerStats
	if !decodeNested(envelope.PlayerStats, &stats) {
		return nil, nil
	}
	return &stats, nil
}

// GetSchemaForGame returns an app's achievement definitions
func (c *Client) GetSchemaForGame(ctx context.Context, appID string) (*GameSchema, error) {
	params := url.Values{}
	params.Set("appid", appID)
	params.Set("l", c.language)

	var envelope struct {
		Game json.RawMessage `json:"game"`
	}
	if err := c.get(ctx, "get schema for game", "/ISteamUserStats/GetSchemaForGame/v2/", params, &envelope); err != nil {
		return nil, err
	}

	var schema GameSchema
	if !decodeNested(envelope.Game, &schema) {
		return nil, nil
	}
	return &schema, nil
}

// GetGlobalAchievementPercentages returns global unlock rates for an app
func (c *Client) GetGlobalAchievementPercentages(ctx context.Context, appID string) ([]GlobalPercentage, error) {
	params := url.Values{}
	params.Set("gameid", appID)

	var envelope struct {
		AchievementPercentages json.RawMessage `json:"achievementpercentages"`
	}
	err := c.get(ctx, "get global achievement percentages",
		"/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v0002/", params, &envelope)
	if err != nil {
		return nil, err
	}

	var body struct {
		Achievements []GlobalPercentage `json:"achievements"`
	}
	if !decodeNested(envelope.AchievementPercentages, &body) {
		return nil, nil
	}
	return body.Achievements, nil
}

// GetPlayerSummaries returns public profiles for the given Steam IDs
func (c *Client) GetPlayerSummaries(ctx context.Context, steamIDs ...string) ([]PlayerSummary, error) {
	params := url.Values{}
	params.Set("steamids", strings.Join(steamIDs, ","))

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := c.get(ctx, "get player summaries", "/ISteamUser/GetPlayerSummaries/v0002/", params, &envelope); err != nil {
		return nil, err
	}

	var body struct {
		Players []PlayerSummary `json:"players"`
	}
	if !decodeNested(envelope.Response, &body) {
		return nil, nil
	}
	return body.Players, nil
}

// get issues a single GET and decodes the JSON body into out. The API key
// never appears in returned errors.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return domain.ErrMissingAPIKey
	}
	params.Set("key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return &domain.UpstreamError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		c.logger.Debug("steam api returned non-success status", "op", op, "status", resp.StatusCode)
		return &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
