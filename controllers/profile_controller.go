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

// ProfileController manages the earning profile: hourly rate, goal amount,
// points accrual rate and notification cadence.
type ProfileController struct {
	db  *gorm.DB
	eng *engine.Engine
}

func NewProfileController(db *gorm.DB, eng *engine.Engine) *ProfileController {
	return &ProfileController{db: db, eng: eng}
}

// Setup sets both the hourly rate and the goal amount in one call.
func (p *ProfileController) Setup(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		RatePerHour float64 `json:"rate_per_hour" binding:"required,gt=0"`
		GoalAmount  float64 `json:"goal_amount" binding:"required,gt=0"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "rate and goal must be positive numbers")
		return
	}

	if err := p.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"rate_per_hour": req.RatePerHour,
			"goal_amount":   req.GoalAmount,
			"updated_at":    time.Now(),
		}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to save profile")
		return
	}

	utils.Success(ctx, gin.H{
		"rate_per_hour": req.RatePerHour,
		"goal_amount":   req.GoalAmount,
	})
}

// UpdateRate changes the hourly rate only.
func (p *ProfileController) UpdateRate(ctx *gin.Context) {
	p.updateNumericField(ctx, "rate_per_hour", 40021)
}

// UpdateGoal changes the goal amount only.
func (p *ProfileController) UpdateGoal(ctx *gin.Context) {
	p.updateNumericField(ctx, "goal_amount", 40022)
}

func (p *ProfileController) updateNumericField(ctx *gin.Context, column string, errCode int) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Value float64 `json:"value" binding:"required,gt=0"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, errCode, "value must be a positive number")
		return
	}

	if err := p.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{column: req.Value, "updated_at": time.Now()}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update profile")
		return
	}
	utils.Success(ctx, gin.H{column: req.Value})
}

// UpdatePointsRate changes how many points one minute of work earns.
func (p *ProfileController) UpdatePointsRate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		PointsPerMinute int `json:"points_per_minute" binding:"required,gt=0"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "points_per_minute must be a positive integer")
		return
	}

	if err := p.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"points_per_minute": req.PointsPerMinute, "updated_at": time.Now()}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update points rate")
		return
	}
	utils.Success(ctx, gin.H{"points_per_minute": req.PointsPerMinute})
}

// UpdateNotifications changes the digest cadence and hour.
func (p *ProfileController) UpdateNotifications(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Mode string `json:"mode" binding:"required"`
		Hour *int   `json:"hour"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	switch req.Mode {
	case models.NotifyOff, models.NotifyHourly, models.NotifyDaily, models.NotifyWeekly:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40025, "mode must be off, hourly, daily or weekly")
		return
	}

	updates := map[string]interface{}{
		"notifications_mode": req.Mode,
		"updated_at":         time.Now(),
	}
	if req.Hour != nil {
		if *req.Hour < 0 || *req.Hour > 23 {
			utils.Error(ctx, http.StatusBadRequest, 40026, "hour must be between 0 and 23")
			return
		}
		updates["notifications_hour"] = *req.Hour
	}

	if err := p.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update notifications")
		return
	}
	utils.Success(ctx, gin.H{"mode": req.Mode})
}

// PointsHistory returns the newest ledger entries.
func (p *ProfileController) PointsHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := p.eng.RecentTransactions(userID, limit)
	if err != nil {
		engineError(ctx, err)
		return
	}
	balance, err := p.eng.Balance(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"balance": balance,
		"items":   entries,
	})
}
