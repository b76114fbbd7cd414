package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wirdbot/internal/core"
	"wirdbot/internal/db/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestTriggerFiresAtFixedTime(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	store.entries["g1"] = []*models.ScheduleEntry{fixedEntry("g1", "09:00")}
	engine := core.New(store, &fakeClock{})

	session, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:00"))
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, 0, session.StartUnit)
	assert.Equal(t, 1, session.EndUnit)
}

func TestTriggerDoesNotFireOutsideMinute(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	store.entries["g1"] = []*models.ScheduleEntry{fixedEntry("g1", "09:00")}
	engine := core.New(store, &fakeClock{})

	session, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:01"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, session)
}

func TestTriggerReturnsExistingSession(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	store.entries["g1"] = []*models.ScheduleEntry{fixedEntry("g1", "09:00")}
	engine := core.New(store, &fakeClock{})

	first, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:00"))
	require.NoError(t, err)
	require.True(t, created)

	// Same minute, second invocation
	second, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:00"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.sessions, 1)
}

func TestTriggerFiresOnPrayerEvent(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	store.entries["g1"] = []*models.ScheduleEntry{eventEntry("g1", models.EventFajr)}
	clock := &fakeClock{events: map[string]string{models.EventFajr: "05:12"}}
	engine := core.New(store, clock)

	_, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("05:12"))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestTriggerClockFailureSkipsEntryOnly(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	store.entries["g1"] = []*models.ScheduleEntry{
		eventEntry("g1", models.EventFajr),
		fixedEntry("g1", "09:00"),
	}
	clock := &fakeClock{errs: map[string]error{models.EventFajr: errors.New("timeout")}}
	engine := core.New(store, clock)

	// The fajr lookup fails, but the fixed entry still fires.
	_, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:00"))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestTriggerIgnoresDisabledEntries(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	entry := fixedEntry("g1", "09:00")
	entry.Enabled = false
	store.entries["g1"] = []*models.ScheduleEntry{entry}
	engine := core.New(store, &fakeClock{})

	_, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("09:00"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestTriggerSkipsEventEntriesWithoutMosque(t *testing.T) {
	store := newMemStore()
	guild := seedGuild(store, "g1", 2, 604, 0)
	guild.MosqueID = ""
	store.entries["g1"] = []*models.ScheduleEntry{eventEntry("g1", models.EventFajr)}
	clock := &fakeClock{events: map[string]string{models.EventFajr: "05:12"}}
	engine := core.New(store, clock)

	_, created, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "g1", at("05:12"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestTriggerRejectsUnconfiguredGuild(t *testing.T) {
	store := newMemStore()
	engine := core.New(store, &fakeClock{})

	_, _, err := engine.EvaluateAndMaybeCreateSession(context.Background(), "missing", at("09:00"))
	assert.ErrorIs(t, err, core.ErrGuildNotConfigured)
}
