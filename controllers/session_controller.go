package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/utils"
)

// SessionController is the write and read surface for logged work time.
type SessionController struct {
	eng *engine.Engine
}

func NewSessionController(eng *engine.Engine) *SessionController {
	return &SessionController{eng: eng}
}

// Create records a confirmed work session. The engine runs the full catch-up
// first, then credits points and advances the streak and challenge.
func (s *SessionController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		DurationSeconds int    `json:"duration_seconds" binding:"required,gt=0"`
		Source          string `json:"source"`
		Note            string `json:"note"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "duration_seconds must be a positive integer")
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}
	if req.DurationSeconds > 24*3600 {
		utils.Error(ctx, http.StatusBadRequest, 40031, "a single session cannot exceed 24 hours")
		return
	}

	events, points, err := s.eng.RegisterActivity(userID, req.DurationSeconds, req.Source, req.Note)
	if err != nil {
		engineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"points_earned": points,
		"events":        events,
	})
}

// List returns the newest sessions first.
func (s *SessionController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 20
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	sessions, err := s.eng.RecentSessions(userID, limit)
	if err != nil {
		engineError(ctx, err)
		return
	}
	total, err := s.eng.TotalSeconds(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"total_seconds": total,
		"items":         sessions,
	})
}

// Daily returns per-day totals for the trailing window.
func (s *SessionController) Daily(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	days := 14
	if v := ctx.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 90 {
			days = n
		}
	}

	stats, err := s.eng.DailyStats(userID, days)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": stats})
}

// Reset deletes all logged sessions. The points ledger and habit state are
// kept; pass keep_goal=false to also clear the goal amount.
func (s *SessionController) Reset(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	keepGoal := ctx.DefaultQuery("keep_goal", "true") != "false"
	if err := s.eng.ResetProgress(userID, keepGoal); err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"kept_goal": keepGoal})
}

// Summary renders the progress dashboard after running catch-up.
func (s *SessionController) Summary(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	summary, events, err := s.eng.Summarize(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"summary": summary,
		"events":  events,
	})
}
