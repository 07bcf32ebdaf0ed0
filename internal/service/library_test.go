package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/steam"
)

func ownedGame(appID int64, name string, playtime int64) steam.OwnedGame {
	return steam.OwnedGame{AppID: ptr(appID), Name: ptr(name), PlaytimeForever: ptr(playtime)}
}

func TestListOwnedTitles_SortsByPlaytimeDescending(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(steamID string) ([]steam.OwnedGame, error) {
		assert.Equal(t, "123", steamID)
		return []steam.OwnedGame{
			ownedGame(1, "Short", 10),
			ownedGame(2, "Long", 900),
			ownedGame(3, "Medium", 300),
		}, nil
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	titles, err := l.ListOwnedTitles(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, titles, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{titles[0].AppID, titles[1].AppID, titles[2].AppID})
}

func TestListOwnedTitles_StableForEqualPlaytime(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(string) ([]steam.OwnedGame, error) {
		return []steam.OwnedGame{
			ownedGame(10, "A", 50),
			ownedGame(20, "B", 100),
			ownedGame(30, "C", 50),
			ownedGame(40, "D", 50),
			ownedGame(50, "E", 100),
		}, nil
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	for i := 0; i < 3; i++ {
		titles, err := l.ListOwnedTitles(t.Context(), "123")
		require.NoError(t, err)

		ids := make([]int64, len(titles))
		for j, title := range titles {
			ids[j] = title.AppID
		}
		assert.Equal(t, []int64{20, 50, 10, 30, 40}, ids)
	}
}

func TestListOwnedTitles_AppliesDefaults(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(string) ([]steam.OwnedGame, error) {
		return []steam.OwnedGame{
			{AppID: ptr(int64(7))},
			{AppID: ptr(int64(8)), Name: ptr("Iconic"), ImgIconURL: ptr("deadbeef"), PlaytimeForever: ptr(int64(5))},
		}, nil
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	titles, err := l.ListOwnedTitles(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, titles, 2)

	assert.Equal(t, domain.OwnedTitle{
		AppID:           8,
		Name:            "Iconic",
		PlaytimeForever: 5,
		ImgIconURL:      "deadbeef",
		IconURL:         "https://media.steampowered.com/steamcommunity/public/images/apps/8/deadbeef.jpg",
	}, titles[0])
	assert.Equal(t, domain.OwnedTitle{
		AppID: 7,
		Name:  domain.UnknownGameName,
	}, titles[1])
}

func TestListOwnedTitles_SkipsEntriesWithoutAppID(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(string) ([]steam.OwnedGame, error) {
		return []steam.OwnedGame{
			{Name: ptr("Broken"), PlaytimeForever: ptr(int64(1000))},
			ownedGame(1, "Fine", 1),
		}, nil
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	titles, err := l.ListOwnedTitles(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Equal(t, int64(1), titles[0].AppID)
}

func TestListOwnedTitles_SkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(string) ([]steam.OwnedGame, error) {
		return []steam.OwnedGame{
			ownedGame(10, "Counter-Strike", 5),
			{Malformed: true},
			{AppID: ptr(int64(30)), Malformed: true},
		}, nil
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	titles, err := l.ListOwnedTitles(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Equal(t, int64(10), titles[0].AppID)
}

func TestListOwnedTitles_NoDataIsEmptyNotNil(t *testing.T) {
	t.Parallel()
	l := NewLibraryLister(&fakeSteam{}, testSteamConfig(), discardLogger())

	titles, err := l.ListOwnedTitles(t.Context(), "123")
	require.NoError(t, err)
	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}

func TestListOwnedTitles_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{ownedGames: func(string) ([]steam.OwnedGame, error) {
		return nil, &domain.UpstreamError{Op: "get owned games", StatusCode: 502}
	}}
	l := NewLibraryLister(api, testSteamConfig(), discardLogger())

	_, err := l.ListOwnedTitles(t.Context(), "123")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
