package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/utils"
)

// DisciplineController exposes the streak state, workday schedule and freeze
// purchases.
type DisciplineController struct {
	eng *engine.Engine
}

func NewDisciplineController(eng *engine.Engine) *DisciplineController {
	return &DisciplineController{eng: eng}
}

// Status runs catch-up and returns the streak, freezes, league and schedule.
func (d *DisciplineController) Status(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	events, err := d.eng.EvaluateDiscipline(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	state, err := d.eng.HabitState(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	today := d.eng.Today()
	todayWorkday, err := d.eng.IsEffectiveWorkday(userID, today)
	if err != nil {
		engineError(ctx, err)
		return
	}
	overrides, err := d.eng.ListOverrides(userID, today, 20)
	if err != nil {
		engineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"streak_days":    state.StreakDays,
		"streak_freezes": state.StreakFreezes,
		"max_freezes":    engine.MaxStreakFreezes,
		"freeze_cost":    engine.FreezeCost,
		"league_tier":    state.LeagueTier,
		"league_name":    engine.LeagueName(state.LeagueTier),
		"workdays_mask":  state.WorkdaysMask,
		"today_workday":  todayWorkday,
		"overrides":      overrides,
		"events":         events,
	})
}

// ToggleWeekday flips one position of the weekly mask (0=Mon .. 6=Sun).
func (d *DisciplineController) ToggleWeekday(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	idx, err := strconv.Atoi(ctx.Param("idx"))
	if err != nil || idx < 0 || idx > 6 {
		utils.Error(ctx, http.StatusBadRequest, 40040, "weekday index must be 0..6")
		return
	}

	state, err := d.eng.ToggleWeekday(userID, idx)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"workdays_mask": state.WorkdaysMask})
}

// ToggleDay flips the effective status of today or a nearby date.
func (d *DisciplineController) ToggleDay(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		OffsetDays int `json:"offset_days"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}
	if req.OffsetDays < 0 || req.OffsetDays > 31 {
		utils.Error(ctx, http.StatusBadRequest, 40042, "offset_days must be 0..31")
		return
	}

	date := d.eng.Today().AddDate(0, 0, req.OffsetDays)
	workday, err := d.eng.ToggleDay(userID, date)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"date":       date.Format("2006-01-02"),
		"is_workday": workday,
	})
}

// BuyFreeze purchases one streak freeze with points.
func (d *DisciplineController) BuyFreeze(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	balance, err := d.eng.BuyFreeze(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	state, err := d.eng.HabitState(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"points_balance": balance,
		"streak_freezes": state.StreakFreezes,
	})
}
