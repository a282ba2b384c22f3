package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/utils"
)

// ChallengeController exposes the streak challenge lifecycle.
type ChallengeController struct {
	eng *engine.Engine
}

func NewChallengeController(eng *engine.Engine) *ChallengeController {
	return &ChallengeController{eng: eng}
}

// Offers lists the creatable (days, wager) pairs with their payouts.
func (c *ChallengeController) Offers(ctx *gin.Context) {
	type offer struct {
		Days   int `json:"days"`
		Wager  int `json:"wager"`
		Payout int `json:"payout"`
	}
	offers := make([]offer, 0, len(engine.ChallengeOffers))
	for _, days := range []int{7, 14, 30} {
		wager := engine.ChallengeOffers[days]
		offers = append(offers, offer{Days: days, Wager: wager, Payout: engine.ChallengePayout(wager)})
	}
	utils.Success(ctx, gin.H{"offers": offers})
}

// Create escrows the wager and starts a challenge.
func (c *ChallengeController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Days  int `json:"days" binding:"required"`
		Wager int `json:"wager" binding:"required"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	challenge, err := c.eng.CreateChallenge(userID, req.Days, req.Wager)
	if err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, challenge)
}

// Active returns the running challenge, 404 when there is none.
func (c *ChallengeController) Active(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	// catch-up may fail an expired challenge before we report it
	if _, err := c.eng.EvaluateDiscipline(userID); err != nil {
		engineError(ctx, err)
		return
	}
	challenge, err := c.eng.ActiveChallenge(userID)
	if err != nil {
		engineError(ctx, err)
		return
	}
	if challenge == nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "no active challenge")
		return
	}
	utils.Success(ctx, gin.H{
		"challenge": challenge,
		"payout":    engine.ChallengePayout(challenge.WagerPoints),
	})
}

// Surrender fails the running challenge at the user's request; the wager stays
// forfeit.
func (c *ChallengeController) Surrender(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.eng.SurrenderChallenge(userID); err != nil {
		engineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"surrendered": true})
}
