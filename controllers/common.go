package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/middleware"
	"github.com/worktally/worktally/utils"
)

// currentUserID resolves the authenticated user or writes a 401.
func currentUserID(ctx *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "not authenticated")
		return 0, false
	}
	return id, true
}

// engineError maps engine sentinel errors onto the API error taxonomy.
func engineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInsufficientFunds):
		utils.Error(ctx, http.StatusConflict, 40901, "insufficient points")
	case errors.Is(err, engine.ErrChallengeActive):
		utils.Error(ctx, http.StatusConflict, 40902, "a challenge is already active")
	case errors.Is(err, engine.ErrFreezeCap):
		utils.Error(ctx, http.StatusConflict, 40903, "freeze inventory already full")
	case errors.Is(err, engine.ErrInvalidOffer):
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid parameters")
	case errors.Is(err, engine.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid parameters")
	case errors.Is(err, engine.ErrNotConfigured):
		utils.Error(ctx, http.StatusConflict, 40904, "rate and goal are not configured yet")
	case errors.Is(err, engine.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}
