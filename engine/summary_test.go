package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktally/worktally/models"
)

func TestSummarizeNotConfigured(t *testing.T) {
	e := newTestEngine(t)
	user := models.User{Username: "fresh", PointsPerMinute: 1}
	require.NoError(t, e.db.Create(&user).Error)
	setClock(t, e, "2026-01-15")

	_, _, err := e.Summarize(user.ID)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSummarizeComputesProgress(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0) // rate 50/h, goal 1000
	setClock(t, e, "2026-01-15")

	// ten hours of work: earned 500 of 1000
	_, _, err := e.RegisterActivity(userID, 10*3600, "timer", "")
	require.NoError(t, err)

	summary, _, err := e.Summarize(userID)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, summary.Earned, 1e-9)
	assert.InDelta(t, 500.0, summary.LeftMoney, 1e-9)
	assert.Equal(t, 50, summary.ProgressPercent)
	assert.Equal(t, 10*3600, summary.WorkedSeconds)
	assert.Equal(t, 10*3600, summary.LeftSeconds)
	assert.Equal(t, 1, summary.StreakDays)
	assert.Equal(t, "Bronze", summary.LeagueName)
	assert.Equal(t, 600, summary.PointsBalance)
	assert.Nil(t, summary.Challenge)
}

func TestSummarizeCapsProgressAtHundred(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	// thirty hours earns 1500 against the 1000 goal
	_, _, err := e.RegisterActivity(userID, 24*3600-1, "timer", "")
	require.NoError(t, err)
	_, _, err = e.RegisterActivity(userID, 7*3600, "timer", "")
	require.NoError(t, err)

	summary, _, err := e.Summarize(userID)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.ProgressPercent)
	assert.Zero(t, summary.LeftMoney)
	assert.Zero(t, summary.LeftSeconds)
}

func TestSummarizeIncludesChallenge(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 100)
	setClock(t, e, "2026-01-12")

	_, _, err := e.RegisterActivity(userID, 3600, "timer", "")
	require.NoError(t, err)
	_, err = e.CreateChallenge(userID, 7, 100)
	require.NoError(t, err)

	summary, _, err := e.Summarize(userID)
	require.NoError(t, err)
	require.NotNil(t, summary.Challenge)
	assert.Equal(t, 1, summary.Challenge.DaysDone)
	assert.Equal(t, 7, summary.Challenge.DaysTarget)
	assert.Equal(t, 100, summary.Challenge.WagerPoints)
	assert.Equal(t, 150, summary.Challenge.PayoutPoints)
}
