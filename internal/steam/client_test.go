package steam

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.SteamConfig{
		APIKey:   "secret-key",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		Language: "english",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveVanityURL_SendsKeyAndVanity(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUser/ResolveVanityURL/v0001/", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Equal(t, "gabelogannewell", r.URL.Query().Get("vanityurl"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`{"response":{"steamid":"76561197960287930","success":1}}`))
	})

	resp, err := c.ResolveVanityURL(t.Context(), "gabelogannewell")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Response.Success)
	assert.Equal(t, "76561197960287930", resp.Response.SteamID)
}

func TestGetOwnedGames_RequestsAppInfo(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v0001/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_appinfo"))
		assert.Equal(t, "123", r.URL.Query().Get("steamid"))
		w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":10,"name":"Counter-Strike","playtime_forever":30,"img_icon_url":"abc"},
			{"appid":20}
		]}}`))
	})

	games, err := c.GetOwnedGames(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.NotNil(t, games[0].Name)
	assert.Equal(t, "Counter-Strike", *games[0].Name)
	assert.Nil(t, games[1].Name)
	assert.Nil(t, games[1].PlaytimeForever)
}

func TestGetOwnedGames_BadEntryDoesNotHideOthers(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"game_count":3,"games":[
			{"appid":10,"name":"Counter-Strike","playtime_forever":5},
			{"appid":20,"name":"Team Fortress Classic","playtime_forever":1.5},
			"not an object"
		]}}`))
	})

	games, err := c.GetOwnedGames(t.Context(), "123")
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.False(t, games[0].Malformed)
	require.NotNil(t, games[0].AppID)
	assert.Equal(t, int64(10), *games[0].AppID)
	assert.True(t, games[1].Malformed)
	assert.Nil(t, games[1].AppID)
	assert.True(t, games[2].Malformed)
}

func TestGetOwnedGames_MissingGamesIsNotAnError(t *testing.T) {
	t.Parallel()
	for name, body := range map[string]string{
		"empty response":  `{"response":{}}`,
		"no response":     `{}`,
		"wrong shape":     `{"response":{"games":"nope"}}`,
		"null response":   `{"response":null}`,
		"response string": `{"response":"private"}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			games, err := c.GetOwnedGames(t.Context(), "123")
			require.NoError(t, err)
			assert.Empty(t, games)
		})
	}
}

func TestGet_NonSuccessStatusIsUpstreamError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"playerstats":{"error":"Profile is not public","success":false}}`))
	})

	_, err := c.GetPlayerAchievements(t.Context(), "123", "440")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
}

func TestGet_UndecodableBodyIsUpstreamError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.GetOwnedGames(t.Context(), "123")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestGet_MissingAPIKey(t *testing.T) {
	t.Parallel()
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.apiKey = ""

	_, err := c.GetSchemaForGame(t.Context(), "440")
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	assert.False(t, called)
}

func TestGet_TransportErrorDoesNotLeakKey(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(&config.SteamConfig{
		APIKey:  "secret-key",
		BaseURL: srv.URL,
		Timeout: time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.GetOwnedGames(t.Context(), "123")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestGetPlayerAchievements_DecodesRecords(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ISteamUserStats/GetPlayerAchievements/v0001/", r.URL.Path)
		assert.Equal(t, "440", r.URL.Query().Get("appid"))
		assert.Equal(t, "english", r.URL.Query().Get("l"))
		w.Write([]byte(`{"playerstats":{"steamID":"123","gameName":"TF2","success":true,"achievements":[
			{"apiname":"A","achieved":1,"unlocktime":100},
			{"apiname":"B","achieved":0,"unlocktime":0}
		]}}`))
	})

	stats, err := c.GetPlayerAchievements(t.Context(), "123", "440")
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.NotNil(t, stats.Success)
	assert.True(t, *stats.Success)
	assert.Equal(t, "TF2", stats.GameName)
	require.Len(t, stats.Achievements, 2)
	assert.Equal(t, 1, stats.Achievements[0].Achieved)
	assert.Equal(t, int64(100), stats.Achievements[0].UnlockTime)
}

func TestGetSchemaForGame_WithoutStatsBlock(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"game":{"gameName":"Tiny Game"}}`))
	})

	schema, err := c.GetSchemaForGame(t.Context(), "1")
	require.NoError(t, err)
	require.NotNil(t, schema)
	assert.Equal(t, "Tiny Game", schema.GameName)
	assert.Nil(t, schema.Achievements())
}

func TestGetGlobalAchievementPercentages_AcceptsStringAndNumber(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "440", r.URL.Query().Get("gameid"))
		w.Write([]byte(`{"achievementpercentages":{"achievements":[
			{"name":"A","percent":"12.5"},
			{"name":"B","percent":3.25}
		]}}`))
	})

	pcts, err := c.GetGlobalAchievementPercentages(t.Context(), "440")
	require.NoError(t, err)
	require.Len(t, pcts, 2)
	assert.InDelta(t, 12.5, float64(pcts[0].Percent), 1e-9)
	assert.InDelta(t, 3.25, float64(pcts[1].Percent), 1e-9)
}

func TestGetPlayerSummaries_JoinsIDs(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1,2", r.URL.Query().Get("steamids"))
		w.Write([]byte(`{"response":{"players":[{"steamid":"1","personaname":"one"}]}}`))
	})

	players, err := c.GetPlayerSummaries(t.Context(), "1", "2")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "one", players[0].PersonaName)
}
