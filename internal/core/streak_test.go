package core_test

import (
	"context"
	"testing"
	"time"

	"wirdbot/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeDay creates the day's session (if needed) and records every unit
// for the user, returning the final result.
func completeDay(t *testing.T, engine *core.Engine, userID, guildID string, now time.Time) *core.CompletionResult {
	t.Helper()
	session, _, err := engine.GetOrCreateToday(context.Background(), guildID, now)
	require.NoError(t, err)

	var result *core.CompletionResult
	for _, unit := range session.Units() {
		result, err = engine.RecordCompletion(context.Background(), userID, guildID, unit, now)
		require.NoError(t, err)
	}
	require.True(t, result.MemberDayComplete)
	return result
}

func TestStreakGrowsOverConsecutiveDays(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "u1", "g1")
	engine := core.New(store, &fakeClock{})

	day := at("08:00")
	var result *core.CompletionResult
	for i := 0; i < 3; i++ {
		result = completeDay(t, engine, "u1", "g1", day.Add(time.Duration(i)*24*time.Hour))
	}

	assert.Equal(t, 3, result.Streak.CurrentDays)
	assert.Equal(t, 3, result.Streak.LongestDays)
	assert.Equal(t, 3, result.Streak.CurrentSessions)
}

func TestStreakResetsAfterGap(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "u1", "g1")
	engine := core.New(store, &fakeClock{})

	day := at("08:00")
	completeDay(t, engine, "u1", "g1", day)
	completeDay(t, engine, "u1", "g1", day.Add(24*time.Hour))
	completeDay(t, engine, "u1", "g1", day.Add(2*24*time.Hour))

	// Skip a day
	result := completeDay(t, engine, "u1", "g1", day.Add(4*24*time.Hour))

	assert.Equal(t, 1, result.Streak.CurrentDays)
	assert.Equal(t, 3, result.Streak.LongestDays, "longest streak survives the reset")
}

func TestStreakLongestNeverBelowCurrent(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "u1", "g1")
	engine := core.New(store, &fakeClock{})

	day := at("08:00")
	for i := 0; i < 5; i++ {
		result := completeDay(t, engine, "u1", "g1", day.Add(time.Duration(i)*24*time.Hour))
		assert.GreaterOrEqual(t, result.Streak.LongestDays, result.Streak.CurrentDays)
		assert.GreaterOrEqual(t, result.Streak.LongestSessions, result.Streak.CurrentSessions)
	}
}

func TestLateBackfillDoesNotMoveStreak(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "u1", "g1")
	engine := core.New(store, &fakeClock{})

	day1 := at("08:00")
	day2 := day1.Add(24 * time.Hour)

	// Day 1's session is created but only day 2 gets completed.
	session1, _, err := engine.GetOrCreateToday(context.Background(), "g1", day1)
	require.NoError(t, err)
	result := completeDay(t, engine, "u1", "g1", day2)
	require.Equal(t, 1, result.Streak.CurrentDays)

	// Backfill day 1's pages afterwards; they resolve late against the
	// older session and must not change the forward-looking streak.
	for _, unit := range session1.Units() {
		res, err := engine.RecordCompletion(context.Background(), "u1", "g1", unit, day2.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, res.Late)
	}

	streak, err := engine.GetStreak(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentDays)
	assert.Equal(t, 1, streak.CurrentSessions)

	user := store.users[userKey("u1", "g1")]
	require.NotNil(t, user.LastCompletionDate)
	assert.Equal(t, core.DateOf(day2), *user.LastCompletionDate)
}

func TestSessionStreakResetsWhenSessionSkipped(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "u1", "g1")
	engine := core.New(store, &fakeClock{})

	day := at("08:00")
	completeDay(t, engine, "u1", "g1", day)

	// A session the user never touches
	_, _, err := engine.GetOrCreateToday(context.Background(), "g1", day.Add(24*time.Hour))
	require.NoError(t, err)

	result := completeDay(t, engine, "u1", "g1", day.Add(2*24*time.Hour))
	assert.Equal(t, 1, result.Streak.CurrentSessions)
	assert.Equal(t, 1, result.Streak.LongestSessions)
	// The missed calendar day also breaks the day streak
	assert.Equal(t, 1, result.Streak.CurrentDays)
}

func TestGetStreakRequiresRegistration(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	engine := core.New(store, &fakeClock{})

	_, err := engine.GetStreak(context.Background(), "nobody", "g1")
	assert.ErrorIs(t, err, core.ErrNotRegistered)
}
