package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/steam"
)

func TestIsSteamID(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"76561197960287930": true,
		"0":                 true,
		"":                  false,
		"gaben":             false,
		"7656119796028793a": false,
		" 123":              false,
		"-123":              false,
	}
	for handle, want := range cases {
		assert.Equal(t, want, IsSteamID(handle), "handle %q", handle)
	}
}

func TestResolve_NumericHandleSkipsUpstream(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{}
	r := NewIdentityResolver(api, discardLogger())

	for _, handle := range []string{"12345678901234567", "1", "76561197960287930"} {
		id, err := r.Resolve(t.Context(), handle)
		require.NoError(t, err)
		assert.Equal(t, handle, id)
	}
	assert.Equal(t, int32(0), api.resolveCalls.Load())
}

func TestResolve_VanityNameMakesExactlyOneCall(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{resolve: func(vanity string) (*steam.VanityResponse, error) {
		assert.Equal(t, "gabelogannewell", vanity)
		return resolvesTo("76561197960287930")(vanity)
	}}
	r := NewIdentityResolver(api, discardLogger())

	id, err := r.Resolve(t.Context(), "gabelogannewell")
	require.NoError(t, err)
	assert.Equal(t, "76561197960287930", id)
	assert.Equal(t, int32(1), api.resolveCalls.Load())
}

func TestResolve_MissingSuccessFlag(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{resolve: func(string) (*steam.VanityResponse, error) {
		var resp steam.VanityResponse
		resp.Response.SteamID = "76561197960287930"
		return &resp, nil
	}}
	r := NewIdentityResolver(api, discardLogger())

	_, err := r.Resolve(t.Context(), "somebody")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Equal(t, int32(1), api.resolveCalls.Load())

	var resErr *domain.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "somebody", resErr.Handle)
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{resolve: func(string) (*steam.VanityResponse, error) {
		var resp steam.VanityResponse
		resp.Response.Success = 42
		resp.Response.Message = "No match"
		return &resp, nil
	}}
	r := NewIdentityResolver(api, discardLogger())

	_, err := r.Resolve(t.Context(), "nobody-at-all")
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestResolve_SuccessWithoutSteamID(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{resolve: resolvesTo("")}
	r := NewIdentityResolver(api, discardLogger())

	_, err := r.Resolve(t.Context(), "ghost")
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestResolve_UpstreamFailureKeepsCause(t *testing.T) {
	t.Parallel()
	upstream := &domain.UpstreamError{Op: "resolve vanity url", StatusCode: 500}
	api := &fakeSteam{resolve: func(string) (*steam.VanityResponse, error) {
		return nil, upstream
	}}
	r := NewIdentityResolver(api, discardLogger())

	_, err := r.Resolve(t.Context(), "gaben")
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestResolve_EmptyHandle(t *testing.T) {
	t.Parallel()
	api := &fakeSteam{}
	r := NewIdentityResolver(api, discardLogger())

	_, err := r.Resolve(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Equal(t, int32(0), api.resolveCalls.Load())
}
