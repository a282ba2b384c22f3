package controllers

import (
	"math/rand"

	"github.com/gin-gonic/gin"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/models"
	"github.com/worktally/worktally/utils"
)

// Casino constants: a spin costs a fixed fee, the reel draw maps to four
// outcomes. The jackpot also grants one streak freeze, capped by the engine.
const (
	casinoSpinCost      = 10
	casinoPayoutPair    = 10
	casinoPayoutTriple  = 28
	casinoPayoutJackpot = 100
)

// CasinoController is a thin collaborator over the ledger. Its only
// mutations go through ApplyTransaction and IncrementFreeze.
type CasinoController struct {
	eng  *engine.Engine
	draw func() int
}

func NewCasinoController(eng *engine.Engine) *CasinoController {
	return &CasinoController{
		eng:  eng,
		draw: func() int { return rand.Intn(64) + 1 },
	}
}

// Info returns the spin cost and the payout table.
func (c *CasinoController) Info(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"spin_cost": casinoSpinCost,
		"payouts": gin.H{
			"lose":    0,
			"pair":    casinoPayoutPair,
			"triple":  casinoPayoutTriple,
			"jackpot": casinoPayoutJackpot,
		},
		"jackpot_bonus": "one streak freeze",
	})
}

// decodeReel maps a 1..64 draw to three reel symbols and the outcome name.
// 64 is the jackpot combination; otherwise three equal symbols are a triple
// and two equal symbols a pair.
func decodeReel(value int) (symbols [3]int, outcome string) {
	v := value - 1
	symbols = [3]int{v & 3, (v >> 2) & 3, (v >> 4) & 3}
	switch {
	case value == 64:
		return symbols, "jackpot"
	case symbols[0] == symbols[1] && symbols[1] == symbols[2]:
		return symbols, "triple"
	case symbols[0] == symbols[1] || symbols[1] == symbols[2] || symbols[0] == symbols[2]:
		return symbols, "pair"
	default:
		return symbols, "lose"
	}
}

func casinoPayout(outcome string) int {
	switch outcome {
	case "jackpot":
		return casinoPayoutJackpot
	case "triple":
		return casinoPayoutTriple
	case "pair":
		return casinoPayoutPair
	default:
		return 0
	}
}

// Spin debits the fee, draws the reel and credits any win.
func (c *CasinoController) Spin(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	balance, err := c.eng.ApplyTransaction(userID, -casinoSpinCost,
		models.ReasonCasinoBet, "slot spin", engine.TxRef{}, false)
	if err != nil {
		engineError(ctx, err)
		return
	}

	value := c.draw()
	symbols, outcome := decodeReel(value)
	payout := casinoPayout(outcome)

	freezes := -1
	if payout > 0 {
		balance, err = c.eng.ApplyTransaction(userID, payout,
			models.ReasonCasinoWin, outcome, engine.TxRef{}, false)
		if err != nil {
			engineError(ctx, err)
			return
		}
	}
	if outcome == "jackpot" {
		freezes, err = c.eng.IncrementFreeze(userID)
		if err != nil {
			engineError(ctx, err)
			return
		}
	}

	resp := gin.H{
		"value":          value,
		"symbols":        symbols,
		"outcome":        outcome,
		"payout":         payout,
		"points_balance": balance,
	}
	if freezes >= 0 {
		resp["streak_freezes"] = freezes
	}
	utils.Success(ctx, resp)
}
