package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktally/worktally/models"
)

func TestNormalizeWorkdaysMask(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1111100", "1111100"},
		{"1010101", "1010101"},
		{"1111111", "1111111"},
		{"0000000", DefaultWorkdaysMask}, // all-zero would disable the streak
		{"111110", DefaultWorkdaysMask},  // wrong length
		{"11111x0", DefaultWorkdaysMask}, // invalid characters
		{"", DefaultWorkdaysMask},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeWorkdaysMask(tc.in), "mask %q", tc.in)
	}
}

func TestHabitStateLazyCreation(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Zero(t, state.StreakDays)
	assert.Equal(t, 1, state.StreakFreezes)
	assert.Equal(t, 1, state.LeagueTier)
	assert.Equal(t, DefaultWorkdaysMask, state.WorkdaysMask)
	assert.Equal(t, "2026-01-11", state.LeagueWeekStart)
}

func TestToggleWeekday(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	state, err := e.ToggleWeekday(userID, 5) // Saturday on
	require.NoError(t, err)
	assert.Equal(t, "1111110", state.WorkdaysMask)

	state, err = e.ToggleWeekday(userID, 5) // and off again
	require.NoError(t, err)
	assert.Equal(t, "1111100", state.WorkdaysMask)

	_, err = e.ToggleWeekday(userID, 7)
	assert.Error(t, err)
}

func TestToggleWeekdayRejectsAllZeroMask(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	seedHabitState(t, e, models.HabitState{
		UserID:          userID,
		StreakFreezes:   1,
		LeagueTier:      1,
		LeagueWeekStart: "2026-01-11",
		WorkdaysMask:    "1000000",
	})

	// flipping the last workday off would leave an all-zero mask
	state, err := e.ToggleWeekday(userID, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkdaysMask, state.WorkdaysMask)
}

func TestToggleDayOverrideCollapses(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15") // Thursday, a regular workday

	day := mustDate(t, "2026-01-15")
	workday, err := e.ToggleDay(userID, day)
	require.NoError(t, err)
	assert.False(t, workday)

	var count int64
	require.NoError(t, e.db.Model(&models.DayOverride{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// toggling back matches the mask again, the override row disappears
	workday, err = e.ToggleDay(userID, day)
	require.NoError(t, err)
	assert.True(t, workday)
	require.NoError(t, e.db.Model(&models.DayOverride{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBuyFreeze(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 200)
	setClock(t, e, "2026-01-15")

	// fixture state starts with one freeze
	balance, err := e.BuyFreeze(userID)
	require.NoError(t, err)
	assert.Equal(t, 200-FreezeCost, balance)

	state, err := e.HabitState(userID)
	require.NoError(t, err)
	assert.Equal(t, MaxStreakFreezes, state.StreakFreezes)

	// at the cap the purchase is refused before any debit
	_, err = e.BuyFreeze(userID)
	assert.ErrorIs(t, err, ErrFreezeCap)
	balance, err = e.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 200-FreezeCost, balance)
}

func TestBuyFreezeNeedsFunds(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, FreezeCost-1)
	setClock(t, e, "2026-01-15")

	_, err := e.BuyFreeze(userID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestIncrementFreezeSilentlyCapped(t *testing.T) {
	e := newTestEngine(t)
	userID := newTestUser(t, e, 0)
	setClock(t, e, "2026-01-15")

	freezes, err := e.IncrementFreeze(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, freezes)

	freezes, err = e.IncrementFreeze(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, freezes)
}
