package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktally/worktally/models"
)

func TestChallengePayout(t *testing.T) {
	assert.Equal(t, 150, ChallengePayout(100))
	assert.Equal(t, 375, ChallengePayout(250))
	assert.Equal(t, 900, ChallengePayout(600))
}

func TestCreateChallengeValidatesOffer(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 1000)
	setClock(t, e, "2026-01-12")

	_, err := e.CreateChallenge(userID, 10, 100)
	assert.ErrorIs(t, err, ErrInvalidOffer)
	_, err = e.CreateChallenge(userID, 7, 250)
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func TestCreateChallengeEscrowsWager(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12") // Monday, no activity yet

	ch, err := e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeActive, ch.Status)
	assert.Zero(t, ch.DaysDone)
	// anchor at yesterday so today's first session counts as day one
	assert.Equal(t, "2026-01-11", ch.LastCountedDate)

	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	_, err = e.CreateChallenge(userID, 7, 100)
	assert.ErrorIs(t, err, ErrChallengeActive)
}

func TestCreateChallengeNeedsFunds(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 50)
	setClock(t, e, "2026-01-12")

	_, err := e.CreateChallenge(userID, 7, 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCreateChallengeCountsTodayWithActivity(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12") // Monday

	_, _, err := e.RegisterActivity(userID, 3600, "timer", "")
	require.NoError(t, err)

	ch, err := e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.DaysDone)
	assert.Equal(t, "2026-01-12", ch.LastCountedDate)
}

func TestChallengeFailsOnMissedWorkday(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12") // Monday

	_, err := e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)

	// Monday and Tuesday pass without any logged work
	setClock(t, e, "2026-01-14")
	events, err := e.EvaluateDiscipline(userID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Contains(t, events[0], "challenge failed")

	ch, err := e.ActiveChallenge(userID)
	require.NoError(t, err)
	assert.Nil(t, ch)

	// the wager stays forfeit
	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	var failed models.StreakChallenge
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&failed).Error)
	assert.Equal(t, models.ChallengeFailed, failed.Status)
}

func TestChallengeCompletesAndPays(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12") // Monday

	_, _, err := e.RegisterActivity(userID, 3600, "timer", "")
	require.NoError(t, err)
	ch, err := e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)
	require.Equal(t, 1, ch.DaysDone)

	// work every day through the next Tuesday; weekends are rest days and do
	// not count toward the seven
	days := []string{
		"2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16", // Tue..Fri
		"2026-01-17", "2026-01-18", // weekend, no challenge progress
		"2026-01-19", "2026-01-20", // Mon, Tue -> days six and seven
	}
	var completedEvents []string
	for _, day := range days {
		setClock(t, e, day)
		events, _, err := e.RegisterActivity(userID, 3600, "timer", "")
		require.NoError(t, err, "day %s", day)
		completedEvents = append(completedEvents, events...)
	}

	var done models.StreakChallenge
	require.NoError(t, e.db.Where("user_id = ?", userID).First(&done).Error)
	assert.Equal(t, models.ChallengeCompleted, done.Status)
	assert.Equal(t, 7, done.DaysDone)

	found := false
	for _, ev := range completedEvents {
		if strings.Contains(ev, "challenge completed") {
			found = true
		}
	}
	assert.True(t, found, "expected a completion event, got %v", completedEvents)

	// 100 start - 100 wager + 9 sessions x 60 points + 150 payout
	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 690, balance)
}

func TestSurrenderChallenge(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12")

	err := e.SurrenderChallenge(userID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)
	require.NoError(t, e.SurrenderChallenge(userID))

	ch, err := e.ActiveChallenge(userID)
	require.NoError(t, err)
	assert.Nil(t, ch)

	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}
