package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steam-tracker/internal/domain"
)

func TestEventArgs(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	args := eventArgs(domain.LookupEvent{
		ID:         "0b8f5e4e-8a52-4e8c-9d7e-0d3f5b1b7c11",
		Kind:       domain.LookupKindAchievements,
		PlayerID:   "76561197960287930",
		TitleID:    "440",
		Found:      true,
		DurationMS: 180,
		OccurredAt: at,
	})

	require.Len(t, args, 9)
	assert.Equal(t, "achievements", args[1])
	assert.Nil(t, args[2], "empty handle stored as NULL")
	assert.Equal(t, "76561197960287930", *args[3].(*string))
	assert.Equal(t, "440", *args[4].(*string))
	assert.Nil(t, args[5])
	assert.Equal(t, true, args[6])
	assert.Equal(t, int64(180), args[7])
	assert.Equal(t, at, args[8])
}

func TestEventArgs_DefaultsTimestamp(t *testing.T) {
	t.Parallel()
	before := time.Now().UTC()
	args := eventArgs(domain.LookupEvent{ID: "x", Kind: domain.LookupKindGuide})

	occurred, ok := args[8].(time.Time)
	require.True(t, ok)
	assert.False(t, occurred.Before(before))
}

func TestMigrationsCreateAuditTable(t *testing.T) {
	t.Parallel()
	require.NotEmpty(t, migrations)
	assert.Contains(t, migrations[0], "CREATE TABLE IF NOT EXISTS lookup_events")
	assert.Contains(t, migrations[0], "found BOOLEAN")
	assert.NotContains(t, migrations[0], "completed")
}
