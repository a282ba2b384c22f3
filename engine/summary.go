package engine

import (
	"errors"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// ChallengeProgress is the summary view of an active challenge.
type ChallengeProgress struct {
	DaysDone     int `json:"days_done"`
	DaysTarget   int `json:"days_target"`
	WagerPoints  int `json:"wager_points"`
	PayoutPoints int `json:"payout_points"`
}

// Summary is the derived read model the transport renders. Produced only
// after catch-up and goal evaluation ran in the same logical operation.
type Summary struct {
	GoalAmount      float64            `json:"goal_amount"`
	Earned          float64            `json:"earned"`
	LeftMoney       float64            `json:"left_money"`
	ProgressPercent int                `json:"progress_percent"`
	WorkedSeconds   int                `json:"worked_seconds"`
	LeftSeconds     int                `json:"left_seconds"`
	RatePerHour     float64            `json:"rate_per_hour"`
	PointsBalance   int                `json:"points_balance"`
	PointsPerMinute int                `json:"points_per_minute"`
	StreakDays      int                `json:"streak_days"`
	StreakFreezes   int                `json:"streak_freezes"`
	MaxFreezes      int                `json:"max_freezes"`
	LeagueTier      int                `json:"league_tier"`
	LeagueName      string             `json:"league_name"`
	ActiveGoals     int64              `json:"active_goals"`
	Challenge       *ChallengeProgress `json:"challenge,omitempty"`
}

// Summarize runs catch-up plus goal evaluation, then builds the summary.
// Fails with ErrNotConfigured until rate and goal are set, so the transport
// never renders divide-by-zero nonsense.
func (e *Engine) Summarize(userID uint) (*Summary, []string, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var summary *Summary
	var events []string
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !user.IsConfigured() {
			return ErrNotConfigured
		}

		catchUp, err := e.evaluateDisciplineTx(tx, userID)
		if err != nil {
			return err
		}
		events = append(events, catchUp...)
		goalEvents, err := e.evaluateBonusGoalsTx(tx, userID)
		if err != nil {
			return err
		}
		events = append(events, goalEvents...)

		worked, err := e.sumSeconds(tx.Model(&models.WorkSession{}).Where("user_id = ?", userID))
		if err != nil {
			return err
		}
		earned := float64(worked) / 3600 * user.RatePerHour
		left := user.GoalAmount - earned
		if left < 0 {
			left = 0
		}
		progress := 0
		if user.GoalAmount > 0 {
			progress = int(earned / user.GoalAmount * 100)
			if progress > 100 {
				progress = 100
			}
		}
		leftSeconds := int(left / user.RatePerHour * 3600)

		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		var activeGoals int64
		if err := tx.Model(&models.BonusGoal{}).
			Where("user_id = ? AND status = ?", userID, models.GoalActive).
			Count(&activeGoals).Error; err != nil {
			return err
		}
		challenge, err := e.activeChallengeTx(tx, userID)
		if err != nil {
			return err
		}

		// re-read: catch-up and goal payouts may have moved the balance
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		summary = &Summary{
			GoalAmount:      user.GoalAmount,
			Earned:          earned,
			LeftMoney:       left,
			ProgressPercent: progress,
			WorkedSeconds:   worked,
			LeftSeconds:     leftSeconds,
			RatePerHour:     user.RatePerHour,
			PointsBalance:   user.PointsBalance,
			PointsPerMinute: user.PointsPerMinute,
			StreakDays:      state.StreakDays,
			StreakFreezes:   state.StreakFreezes,
			MaxFreezes:      MaxStreakFreezes,
			LeagueTier:      state.LeagueTier,
			LeagueName:      LeagueName(state.LeagueTier),
			ActiveGoals:     activeGoals,
		}
		if challenge != nil {
			summary.Challenge = &ChallengeProgress{
				DaysDone:     challenge.DaysDone,
				DaysTarget:   challenge.DaysTarget,
				WagerPoints:  challenge.WagerPoints,
				PayoutPoints: ChallengePayout(challenge.WagerPoints),
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return summary, events, nil
}
