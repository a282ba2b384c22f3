package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktally/worktally/models"
)

func TestScoreWeek(t *testing.T) {
	cases := []struct {
		name    string
		tier    int
		minutes int
		newTier int
		reward  int
		penalty int
	}{
		{"bronze promotes at threshold", 1, 240, 2, 25, 0},
		{"bronze idle stays", 1, 0, 1, 0, 0},
		{"silver below safe demotes", 2, 100, 1, 0, 20},
		{"silver at safe stays", 2, 120, 2, 0, 0},
		{"gold promotes", 3, 360, 4, 45, 0},
		{"diamond cannot promote", 10, 100000, 10, 0, 0},
		{"diamond below safe demotes", 10, 100, 9, 0, 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			newTier, reward, penalty := scoreWeek(tc.tier, tc.minutes)
			assert.Equal(t, tc.newTier, newTier)
			assert.Equal(t, tc.reward, reward)
			assert.Equal(t, tc.penalty, penalty)
		})
	}
}

func TestLeagueNameClamps(t *testing.T) {
	assert.Equal(t, "Bronze", LeagueName(0))
	assert.Equal(t, "Bronze", LeagueName(1))
	assert.Equal(t, "Diamond", LeagueName(10))
	assert.Equal(t, "Diamond", LeagueName(99))
}

func TestRolloverScoresWeeksOldestFirst(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15") // Thursday, current week starts 2026-01-11

	seedHabitState(t, e, models.HabitState{
		UserID:            userID,
		StreakFreezes:     1,
		LeagueTier:        1,
		LeagueWeekStart:   "2025-12-28", // two finished weeks behind
		WorkdaysMask:      DefaultWorkdaysMask,
		StreakLastCounted: "2026-01-14",
	})
	// 240 minutes in the first week promotes; the second week is empty
	addSession(t, e, userID, "2025-12-29", 240*60)

	events, err := e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Contains(t, events[0], "promoted")
	assert.Contains(t, events[1], "demoted")

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.LeagueTier)
	assert.Equal(t, "2026-01-11", state.LeagueWeekStart)

	// +25 promotion then -20 demotion, capped at the balance
	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	// replay is a no-op
	events, err = e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRolloverSetsAnchorOnFirstRun(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	// lazily created state gets the current week anchor, no scoring
	events, err := e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	assert.Empty(t, events)

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-11", state.LeagueWeekStart)
	assert.Equal(t, 1, state.LeagueTier)
}

func TestRolloverNeverScoresCurrentWeek(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	seedHabitState(t, e, models.HabitState{
		UserID:            userID,
		StreakFreezes:     1,
		LeagueTier:        1,
		LeagueWeekStart:   "2026-01-11",
		WorkdaysMask:      DefaultWorkdaysMask,
		StreakLastCounted: "2026-01-14",
	})
	// heavy activity inside the running week must not score yet
	addSession(t, e, userID, "2026-01-12", 600*60)

	events, err := e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	assert.Empty(t, events)

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.LeagueTier)
}

func TestRolloverDemotionStopsAtBronze(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-15")

	seedHabitState(t, e, models.HabitState{
		UserID:            userID,
		StreakFreezes:     1,
		LeagueTier:        2,
		LeagueWeekStart:   "2025-12-28",
		WorkdaysMask:      DefaultWorkdaysMask,
		StreakLastCounted: "2026-01-14",
	})

	// two empty weeks: silver demotes once, bronze has no lower tier
	events, err := e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, events[0], "demoted")

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.LeagueTier)
}
