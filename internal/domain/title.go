package domain

// UnknownGameName is used when Steam omits a title's name.
const UnknownGameName = "Unknown Game"

// OwnedTitle is a single game from a player's library
type OwnedTitle struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int64  `json:"playtime_forever"`
	ImgIconURL      string `json:"img_icon_url"`
	IconURL         string `json:"icon_url"`
}

// PlayerSummary is the public profile of a Steam account
type PlayerSummary struct {
	SteamID     string `json:"steamId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	ProfileURL  string `json:"profileUrl,omitempty"`
}

// maxTitleIDLen fits any uint32 app ID.
const maxTitleIDLen = 10

// ValidTitleID reports whether id has the shape of a Steam app ID.
func ValidTitleID(id string) bool {
	if id == "" || len(id) > maxTitleIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
