package domain

const (
	// DefaultRarity is applied to achievements missing from the global stats,
	// treating them as common.
	DefaultRarity = 100.0

	// MissingDescription stands in when an unlock record has no schema entry.
	MissingDescription = "No description available"

	// MaxRecentUnlocks caps AggregateResult.Recent.
	MaxRecentUnlocks = 5
)

// AchievementDefinition is one entry of a title's achievement schema
type AchievementDefinition struct {
	APIName     string
	DisplayName string
	Description string
	Icon        string
}

// UnlockRecord is a player's progress on one achievement
type UnlockRecord struct {
	APIName    string
	Achieved   bool
	UnlockTime int64
}

// GlobalRarity maps achievement API names to the percentage of players who
// unlocked them.
type GlobalRarity map[string]float64

// Lookup returns the rarity for key, or DefaultRarity when unknown.
func (g GlobalRarity) Lookup(key string) float64 {
	if pct, ok := g[key]; ok {
		return pct
	}
	return DefaultRarity
}

// MergedAchievement joins a definition, an unlock record and its rarity
type MergedAchievement struct {
	APIName     string  `json:"apiName"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Achieved    bool    `json:"achieved"`
	UnlockTime  int64   `json:"unlockTime"`
	Rarity      float64 `json:"rarity"`
}

// AggregateResult is the achievements view of one player for one title
type AggregateResult struct {
	Completed  int                 `json:"completed"`
	Total      int                 `json:"total"`
	Recent     []MergedAchievement `json:"recent"`
	All        []MergedAchievement `json:"all"`
	Incomplete []MergedAchievement `json:"incomplete"`
	GameName   string              `json:"gameName,omitempty"`
}

// EmptyAggregate is returned whenever the unlock records or the schema are
// unavailable. Slices are non-nil so they encode as [].
func EmptyAggregate() AggregateResult {
	return AggregateResult{
		Recent:     []MergedAchievement{},
		All:        []MergedAchievement{},
		Incomplete: []MergedAchievement{},
	}
}

// IsEmpty reports whether r carries no achievements.
func (r AggregateResult) IsEmpty() bool {
	return r.Total == 0 && len(r.All) == 0
}
