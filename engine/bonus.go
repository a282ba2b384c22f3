package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// CreateBonusGoal validates and stores a new deadline-bound target.
func (e *Engine) CreateBonusGoal(userID uint, title string, targetType models.GoalTargetType,
	targetValue float64, rewardPoints int, deadline time.Time) (*models.BonusGoal, error) {

	title = strings.TrimSpace(title)
	if title == "" || targetValue <= 0 || rewardPoints <= 0 {
		return nil, ErrInvalidOffer
	}
	if targetType != models.GoalTargetMoney && targetType != models.GoalTargetHours {
		return nil, ErrInvalidOffer
	}
	now := e.nowIn()
	if !deadline.After(now) {
		return nil, ErrInvalidOffer
	}

	goal := models.BonusGoal{
		UserID:       userID,
		Title:        title,
		TargetType:   targetType,
		TargetValue:  targetValue,
		RewardPoints: rewardPoints,
		StartAt:      now,
		DeadlineAt:   deadline,
		Status:       models.GoalActive,
	}
	if err := e.db.Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListBonusGoals returns goals in the given statuses, soonest deadline first.
func (e *Engine) ListBonusGoals(userID uint, statuses []models.GoalStatus, limit int) ([]models.BonusGoal, error) {
	if limit <= 0 {
		limit = 50
	}
	if len(statuses) == 0 {
		statuses = []models.GoalStatus{models.GoalActive}
	}
	var goals []models.BonusGoal
	err := e.db.Where("user_id = ? AND status IN ?", userID, statuses).
		Order("deadline_at ASC, id DESC").Limit(limit).Find(&goals).Error
	return goals, err
}

// CountBonusGoals returns (active, completed, expired) counts.
func (e *Engine) CountBonusGoals(userID uint) (int64, int64, int64, error) {
	counts := make(map[models.GoalStatus]int64, 3)
	for _, status := range []models.GoalStatus{models.GoalActive, models.GoalCompleted, models.GoalExpired} {
		var n int64
		if err := e.db.Model(&models.BonusGoal{}).
			Where("user_id = ? AND status = ?", userID, status).Count(&n).Error; err != nil {
			return 0, 0, 0, err
		}
		counts[status] = n
	}
	return counts[models.GoalActive], counts[models.GoalCompleted], counts[models.GoalExpired], nil
}

// DeleteBonusGoal removes an active goal. Terminal goals stay as history.
func (e *Engine) DeleteBonusGoal(userID, goalID uint) error {
	res := e.db.Where("id = ? AND user_id = ? AND status = ?", goalID, userID, models.GoalActive).
		Delete(&models.BonusGoal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GoalProgress measures a goal over [start, min(now, deadline)]: money goals
// as hours worked times the hourly rate, hour goals as plain hours worked.
func (e *Engine) GoalProgress(goal *models.BonusGoal, ratePerHour float64) (float64, error) {
	return e.goalProgressTx(e.db, goal, ratePerHour)
}

func (e *Engine) goalProgressTx(tx *gorm.DB, goal *models.BonusGoal, ratePerHour float64) (float64, error) {
	now := e.nowIn()
	periodEnd := now
	if goal.DeadlineAt.Before(periodEnd) {
		periodEnd = goal.DeadlineAt
	}
	seconds, err := e.rangeSecondsTx(tx, goal.UserID, goal.StartAt, periodEnd)
	if err != nil {
		return 0, err
	}
	hours := float64(seconds) / 3600
	if goal.TargetType == models.GoalTargetMoney {
		return hours * ratePerHour, nil
	}
	return hours, nil
}

// EvaluateBonusGoals transitions every active goal that is due: completion
// pays the reward once, an overdue goal expires without payout even when the
// target is met late. Terminal goals are untouched, so re-evaluation is a
// no-op.
func (e *Engine) EvaluateBonusGoals(userID uint) ([]string, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var events []string
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		events, txErr = e.evaluateBonusGoalsTx(tx, userID)
		return txErr
	})
	return events, err
}

func (e *Engine) evaluateBonusGoalsTx(tx *gorm.DB, userID uint) ([]string, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var goals []models.BonusGoal
	if err := tx.Where("user_id = ? AND status = ?", userID, models.GoalActive).
		Find(&goals).Error; err != nil {
		return nil, err
	}

	now := e.nowIn()
	var events []string
	for i := range goals {
		goal := &goals[i]
		progress, err := e.goalProgressTx(tx, goal, user.RatePerHour)
		if err != nil {
			return events, err
		}

		if progress >= goal.TargetValue && !now.After(goal.DeadlineAt) {
			res := tx.Model(&models.BonusGoal{}).
				Where("id = ? AND user_id = ? AND status = ?", goal.ID, userID, models.GoalActive).
				Updates(map[string]interface{}{
					"status":       models.GoalCompleted,
					"completed_at": now,
					"updated_at":   time.Now(),
				})
			if res.Error != nil {
				return events, res.Error
			}
			if res.RowsAffected > 0 {
				if _, err := e.applyTransactionTx(tx, userID, goal.RewardPoints,
					models.ReasonBonusGoalReward, goal.Title,
					TxRef{Type: "bonus_goal", ID: goal.ID}, false); err != nil {
					return events, err
				}
				events = append(events, fmt.Sprintf("Bonus goal completed: %s (+%d points)",
					goal.Title, goal.RewardPoints))
			}
			continue
		}

		if now.After(goal.DeadlineAt) {
			res := tx.Model(&models.BonusGoal{}).
				Where("id = ? AND user_id = ? AND status = ?", goal.ID, userID, models.GoalActive).
				Updates(map[string]interface{}{
					"status":     models.GoalExpired,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return events, res.Error
			}
			if res.RowsAffected > 0 {
				events = append(events, fmt.Sprintf("Bonus goal expired: %s", goal.Title))
			}
		}
	}
	return events, nil
}
