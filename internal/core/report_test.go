package core_test

import (
	"context"
	"testing"

	"wirdbot/internal/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportPartitionsMembers(t *testing.T) {
	store := newMemStore()
	seedGuild(store, "g1", 2, 604, 0)
	seedUser(store, "alice", "g1")
	seedUser(store, "bob", "g1")
	seedUser(store, "carol", "g1")
	engine := core.New(store, &fakeClock{})

	session, _, err := engine.GetOrCreateToday(context.Background(), "g1", at("08:00"))
	require.NoError(t, err)

	// alice finishes, bob does half, carol does nothing
	for _, unit := range session.Units() {
		_, err = engine.RecordCompletion(context.Background(), "alice", "g1", unit, at("09:00"))
		require.NoError(t, err)
	}
	_, err = engine.RecordCompletion(context.Background(), "bob", "g1", session.StartUnit, at("09:00"))
	require.NoError(t, err)

	report, err := engine.BuildReport(context.Background(), session.ID)
	require.NoError(t, err)

	require.Len(t, report.Completed, 1)
	assert.Equal(t, "alice", report.Completed[0].UserID)
	assert.Equal(t, 1, report.Completed[0].Streak.CurrentDays)

	require.Len(t, report.Pending, 2)
	assert.Equal(t, "bob", report.Pending[0].UserID)
	assert.Equal(t, 1, report.Pending[0].UnitsDone)
	assert.Equal(t, "carol", report.Pending[1].UserID)
	assert.Equal(t, 0, report.Pending[1].UnitsDone)

	for _, status := range append(report.Completed, report.Pending...) {
		assert.Equal(t, session.UnitCount(), status.UnitsTotal)
	}
}

func TestBuildReportUnknownSession(t *testing.T) {
	store := newMemStore()
	engine := core.New(store, &fakeClock{})

	_, err := engine.BuildReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, core.ErrNoSession)
}
