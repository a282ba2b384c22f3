package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/models"
	"github.com/worktally/worktally/utils"
)

// GoalController exposes bonus goals: deadline-bound targets with a fixed
// point reward.
type GoalController struct {
	db  *gorm.DB
	eng *engine.Engine
}

func NewGoalController(db *gorm.DB, eng *engine.Engine) *GoalController {
	return &GoalController{db: db, eng: eng}
}

// Create stores a new active goal.
func (g *GoalController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Title        string  `json:"title" binding:"required,max=255"`
		TargetType   string  `json:"target_type" binding:"required"`
		TargetValue  float64 `json:"target_value" binding:"required,gt=0"`
		RewardPoints int     `json:"reward_points" binding:"required,gt=0"`
		DeadlineAt   string  `json:"deadline_at" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.DeadlineAt)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "deadline_at must be RFC3339")
		return
	}

	goal, err := g.eng.CreateBonusGoal(userID, req.Title,
		models.GoalTargetType(req.TargetType), req.TargetValue, req.RewardPoints, deadline)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, goal)
}

// List returns goals, optionally filtered by status, after evaluating due
// transitions so the listing never shows a stale "active" goal.
func (g *GoalController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if _, err := g.eng.EvaluateBonusGoals(userID); err != nil {
		engineError(ctx, err)
		return
	}

	var statuses []models.GoalStatus
	switch ctx.Query("status") {
	case "", "active":
		statuses = []models.GoalStatus{models.GoalActive}
	case "completed":
		statuses = []models.GoalStatus{models.GoalCompleted}
	case "expired":
		statuses = []models.GoalStatus{models.GoalExpired}
	case "all":
		statuses = []models.GoalStatus{models.GoalActive, models.GoalCompleted, models.GoalExpired}
	default:
		utils.Error(ctx, http.StatusBadRequest, 40062, "status must be active, completed, expired or all")
		return
	}

	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	goals, err := g.eng.ListBonusGoals(userID, statuses, limit)
	if err != nil {
		engineError(ctx, err)
		return
	}

	var user models.User
	if err := g.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load user")
		return
	}

	type goalView struct {
		models.BonusGoal
		Progress float64 `json:"progress"`
	}
	views := make([]goalView, 0, len(goals))
	for i := range goals {
		progress, err := g.eng.GoalProgress(&goals[i], user.RatePerHour)
		if err != nil {
			engineError(ctx, err)
			return
		}
		views = append(views, goalView{BonusGoal: goals[i], Progress: progress})
	}

	active, completed, expired, err := g.eng.CountBonusGoals(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"items": views,
		"counts": gin.H{
			"active":    active,
			"completed": completed,
			"expired":   expired,
		},
	})
}

// Delete removes an active goal; terminal goals stay as history.
func (g *GoalController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	goalID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid goal id")
		return
	}

	if err := g.eng.DeleteBonusGoal(userID, uint(goalID)); err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}
