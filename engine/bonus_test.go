package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktally/worktally/models"
)

func TestCreateBonusGoalValidation(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-12")
	deadline := mustDate(t, "2026-01-20")

	_, err := e.CreateBonusGoal(userID, "  ", models.GoalTargetMoney, 100, 50, deadline)
	assert.ErrorIs(t, err, ErrInvalidOffer)
	_, err = e.CreateBonusGoal(userID, "x", "calories", 100, 50, deadline)
	assert.ErrorIs(t, err, ErrInvalidOffer)
	_, err = e.CreateBonusGoal(userID, "x", models.GoalTargetMoney, -1, 50, deadline)
	assert.ErrorIs(t, err, ErrInvalidOffer)
	_, err = e.CreateBonusGoal(userID, "x", models.GoalTargetMoney, 100, 50, mustDate(t, "2026-01-01"))
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func TestBonusGoalCompletesOnce(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0) // rate 50/h from the fixture
	setClock(t, e, "2026-01-12")

	goal, err := e.CreateBonusGoal(userID, "weekly sprint", models.GoalTargetMoney,
		100, 40, mustDate(t, "2026-01-16"))
	require.NoError(t, err)

	// two hours at 50/h reaches the 100 target; the session write path
	// evaluates goals in the same transaction
	events, _, err := e.RegisterActivity(userID, 2*3600, "timer", "")
	require.NoError(t, err)

	completed := false
	for _, ev := range events {
		if ev == "Bonus goal completed: weekly sprint (+40 points)" {
			completed = true
		}
	}
	assert.True(t, completed, "events: %v", events)

	var reloaded models.BonusGoal
	require.NoError(t, e.db.First(&reloaded, goal.ID).Error)
	assert.Equal(t, models.GoalCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)

	// re-evaluation is a no-op: terminal states never pay again
	moreEvents, err := e.EvaluateBonusGoals(userID)
	require.NoError(t, err)
	assert.Empty(t, moreEvents)

	var rewards int64
	require.NoError(t, e.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND reason = ?", userID, models.ReasonBonusGoalReward).
		Count(&rewards).Error)
	assert.EqualValues(t, 1, rewards)
}

func TestBonusGoalExpiresWithoutPayout(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-12")

	goal, err := e.CreateBonusGoal(userID, "hours push", models.GoalTargetHours,
		2, 40, mustDate(t, "2026-01-13"))
	require.NoError(t, err)

	// the target is reached only after the deadline passed
	setClock(t, e, "2026-01-15")
	addSession(t, e, userID, "2026-01-14", 3*3600)

	events, err := e.EvaluateBonusGoals(userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Bonus goal expired: hours push", events[0])

	var reloaded models.BonusGoal
	require.NoError(t, e.db.First(&reloaded, goal.ID).Error)
	assert.Equal(t, models.GoalExpired, reloaded.Status)
	assert.Nil(t, reloaded.CompletedAt)

	balance, err := e.Balance(userID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestGoalProgressClampsAtDeadline(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-12")

	goal, err := e.CreateBonusGoal(userID, "push", models.GoalTargetHours,
		10, 40, mustDate(t, "2026-01-14").Add(8*time.Hour))
	require.NoError(t, err)

	addSession(t, e, userID, "2026-01-13", 3600) // inside the window
	addSession(t, e, userID, "2026-01-15", 3600) // after the deadline

	setClock(t, e, "2026-01-16")
	progress, err := e.GoalProgress(goal, 50)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, progress, 1e-9)
}

func TestDeleteBonusGoalActiveOnly(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-12")

	goal, err := e.CreateBonusGoal(userID, "push", models.GoalTargetHours,
		2, 40, mustDate(t, "2026-01-13"))
	require.NoError(t, err)

	// expire it, then deletion must refuse
	setClock(t, e, "2026-01-15")
	_, err = e.EvaluateBonusGoals(userID)
	require.NoError(t, err)

	err = e.DeleteBonusGoal(userID, goal.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := e.CreateBonusGoal(userID, "again", models.GoalTargetHours,
		2, 40, mustDate(t, "2026-01-20"))
	require.NoError(t, err)
	require.NoError(t, e.DeleteBonusGoal(userID, active.ID))
}
