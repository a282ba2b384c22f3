package models

import "time"

// PointTransaction is an append-only ledger entry. The running sum of
// DeltaPoints per user equals User.PointsBalance at all times.
type PointTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	DeltaPoints int       `gorm:"not null" json:"delta_points"`
	Reason      string    `gorm:"size:40;not null" json:"reason"`
	RefType     string    `gorm:"size:32" json:"ref_type"`
	RefID       uint      `json:"ref_id"`
	Note        string    `gorm:"size:255" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ledger reason codes.
const (
	ReasonWorkSession     = "work_session"
	ReasonLeaguePromotion = "league_promotion"
	ReasonLeagueDemotion  = "league_demotion"
	ReasonFreezePurchase  = "streak_freeze_purchase"
	ReasonChallengeWager  = "streak_challenge_wager"
	ReasonChallengeReward = "streak_challenge_reward"
	ReasonBonusGoalReward = "bonus_goal_reward"
	ReasonMarketPurchase  = "market_purchase"
	ReasonCasinoBet       = "casino_bet"
	ReasonCasinoWin       = "casino_win"
)
