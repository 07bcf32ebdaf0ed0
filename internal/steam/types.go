package steam

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VanityResponse is the ISteamUser/ResolveVanityURL payload
type VanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
		Message string `json:"message"`
	} `json:"response"`
}

// OwnedGame is one raw entry of IPlayerService/GetOwnedGames. Pointer fields
// distinguish absent values from zero values. Malformed is set for an entry
// that could not be decoded; its other fields are unset.
type OwnedGame struct {
	AppID           *int64  `json:"appid"`
	Name            *string `json:"name"`
	PlaytimeForever *int64  `json:"playtime_forever"`
	ImgIconURL      *string `json:"img_icon_url"`
	Malformed       bool    `json:"-"`
}

type ownedGamesBody struct {
	Games []json.RawMessage `json:"games"`
}

// decodeOwnedGames decodes each entry on its own so one bad entry does not
// hide the rest of the library.
func decodeOwnedGames(raw []json.RawMessage) []OwnedGame {
	if raw == nil {
		return nil
	}
	games := make([]OwnedGame, 0, len(raw))
	for _, entry := range raw {
		var game OwnedGame
		if err := json.Unmarshal(entry, &game); err != nil {
			games = append(games, OwnedGame{Malformed: true})
			continue
		}
		games = append(games, game)
	}
	return games
}

// PlayerAchievement is one raw unlock record
type PlayerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
}

// PlayerStats is the playerstats object of GetPlayerAchievements
type PlayerStats struct {
	SteamID      string              `json:"steamID"`
	GameName     string              `json:"gameName"`
	Achievements []PlayerAchievement `json:"achievements"`
	Success      *bool               `json:"success"`
	Error        string              `json:"error"`
}

// SchemaAchievement is one achievement definition from GetSchemaForGame
type SchemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Hidden      int    `json:"hidden"`
}

// GameStats is the availableGameStats block of a schema
type GameStats struct {
	Achievements []SchemaAchievement `json:"achievements"`
}

// GameSchema is the game object of GetSchemaForGame
type GameSchema struct {
	GameName           string     `json:"gameName"`
	GameVersion        string     `json:"gameVersion"`
	AvailableGameStats *GameStats `json:"availableGameStats"`
}

// Achievements returns the schema's achievement list, or nil when the
// schema carries no achievement block.
func (g *GameSchema) Achievements() []SchemaAchievement {
	if g == nil || g.AvailableGameStats == nil {
		return nil
	}
	return g.AvailableGameStats.Achievements
}

// Percent accepts both JSON numbers and numeric strings; Steam has served
// global percentages in both forms.
type Percent float64

func (p *Percent) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid percent %s: %w", data, err)
	}
	*p = Percent(v)
	return nil
}

// GlobalPercentage is one entry of GetGlobalAchievementPercentagesForApp
type GlobalPercentage struct {
	Name    string  `json:"name"`
	Percent Percent `json:"percent"`
}

// PlayerSummary is one raw entry of GetPlayerSummaries
type PlayerSummary struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
	ProfileURL  string `json:"profileurl"`
	AvatarFull  string `json:"avatarfull"`
}

// decodeNested unmarshals raw into out. It reports false when raw is absent
// or has the wrong shape, which callers treat as "no data".
func decodeNested(raw json.RawMessage, out interface{}) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
