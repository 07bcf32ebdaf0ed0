package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steam-tracker/internal/domain"
)

type fakeStore struct {
	mu     sync.Mutex
	events []domain.LookupEvent
	err    error
}

func (f *fakeStore) RecordEvents(_ context.Context, events []domain.LookupEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

type fakeCounter struct {
	counts map[string]int64
	names  map[string]string
	err    error
}

func (f *fakeCounter) IncrementTitles(_ context.Context, counts map[string]int64, names map[string]string) error {
	if f.err != nil {
		return f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
		f.names = map[string]string{}
	}
	for id, n := range counts {
		f.counts[id] += n
	}
	for id, name := range names {
		f.names[id] = name
	}
	return nil
}

type fakeBroadcaster struct {
	events []domain.LookupEvent
}

func (f *fakeBroadcaster) BroadcastLookup(event domain.LookupEvent) {
	f.events = append(f.events, event)
}

func sampleEvents() []domain.LookupEvent {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.LookupEvent{
		{ID: "1", Kind: domain.LookupKindAchievements, PlayerID: "1", TitleID: "440", GameName: "Team Fortress 2", OccurredAt: at},
		{ID: "2", Kind: domain.LookupKindAchievements, PlayerID: "2", TitleID: "440", OccurredAt: at},
		{ID: "3", Kind: domain.LookupKindAchievements, PlayerID: "2", TitleID: "620", GameName: "Portal 2", OccurredAt: at},
		{ID: "4", Kind: domain.LookupKindLibrary, PlayerID: "3", OccurredAt: at},
	}
}

func TestRecorder_FansOutToAllSinks(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	counter := &fakeCounter{}
	hub := &fakeBroadcaster{}
	r := NewRecorder(store, counter, hub, discardLogger())

	require.NoError(t, r.RecordEvents(t.Context(), sampleEvents()))

	assert.Len(t, store.events, 4)
	assert.Equal(t, map[string]int64{"440": 2, "620": 1}, counter.counts)
	assert.Equal(t, map[string]string{"440": "Team Fortress 2", "620": "Portal 2"}, counter.names)
	assert.Len(t, hub.events, 4)
}

func TestRecorder_NilSinks(t *testing.T) {
	t.Parallel()
	r := NewRecorder(nil, nil, nil, discardLogger())

	assert.NoError(t, r.Publish(t.Context(), sampleEvents()[0]))
	assert.NoError(t, r.RecordEvents(t.Context(), nil))
}

func TestRecorder_JoinsSinkErrors(t *testing.T) {
	t.Parallel()
	storeErr := errors.New("db down")
	counterErr := errors.New("redis down")
	hub := &fakeBroadcaster{}
	r := NewRecorder(&fakeStore{err: storeErr}, &fakeCounter{err: counterErr}, hub, discardLogger())

	err := r.RecordEvents(t.Context(), sampleEvents())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, counterErr)
	assert.Len(t, hub.events, 4, "broadcast still happens when storage fails")
}

func TestRecorder_SkipsTrendingWithoutAchievementLookups(t *testing.T) {
	t.Parallel()
	counter := &fakeCounter{err: errors.New("must not be called")}
	r := NewRecorder(nil, counter, nil, discardLogger())

	err := r.Publish(t.Context(), domain.LookupEvent{ID: "x", Kind: domain.LookupKindProfile, PlayerID: "1"})
	assert.NoError(t, err)
}
