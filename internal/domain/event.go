package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// LookupKind identifies which route produced a lookup event
type LookupKind string

const (
	LookupKindLibrary      LookupKind = "library"
	LookupKindAchievements LookupKind = "achievements"
	LookupKindProfile      LookupKind = "profile"
	LookupKindGuide        LookupKind = "guide"
)

// Valid reports whether k is a known lookup kind.
func (k LookupKind) Valid() bool {
	switch k {
	case LookupKindLibrary, LookupKindAchievements, LookupKindProfile, LookupKindGuide:
		return true
	}
	return false
}

// Storage limits for the free-text fields of a LookupEvent
const (
	MaxEventHandleLen   = 255
	MaxEventIDLen       = 32
	MaxEventGameNameLen = 255
)

// LookupEvent records that a lookup happened. It carries request metadata
// only, never the Steam payload itself. Found is false when Steam returned
// no data for the lookup.
type LookupEvent struct {
	ID         string     `json:"id"`
	Kind       LookupKind `json:"kind"`
	Handle     string     `json:"handle,omitempty"`
	PlayerID   string     `json:"player_id,omitempty"`
	TitleID    string     `json:"title_id,omitempty"`
	GameName   string     `json:"game_name,omitempty"`
	Found      bool       `json:"found"`
	DurationMS int64      `json:"duration_ms"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Bounded returns e with its text fields cut to the storage limits.
func (e LookupEvent) Bounded() LookupEvent {
	e.Handle = truncate(e.Handle, MaxEventHandleLen)
	e.PlayerID = truncate(e.PlayerID, MaxEventIDLen)
	e.TitleID = truncate(e.TitleID, MaxEventIDLen)
	e.GameName = truncate(e.GameName, MaxEventGameNameLen)
	return e
}

// truncate keeps at most n characters of s, replacing invalid UTF-8.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TrendingTitle is one row of the most-looked-up titles ranking
type TrendingTitle struct {
	Rank    int64  `json:"rank"`
	TitleID string `json:"title_id"`
	Name    string `json:"name,omitempty"`
	Lookups int64  `json:"lookups"`
}

// LookupStats summarises recorded lookups per kind
type LookupStats struct {
	Total  int64                `json:"total"`
	ByKind map[LookupKind]int64 `json:"by_kind"`
}
