package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// ChallengeOffers enumerates the only creatable (days, wager) pairs.
var ChallengeOffers = map[int]int{
	7:  100,
	14: 250,
	30: 600,
}

// ChallengePayout returns the wager plus a 50% premium, rounded.
func ChallengePayout(wager int) int {
	return int(math.Round(float64(wager) * 1.5))
}

// ActiveChallenge returns the active challenge, or nil when there is none.
func (e *Engine) ActiveChallenge(userID uint) (*models.StreakChallenge, error) {
	return e.activeChallengeTx(e.db, userID)
}

func (e *Engine) activeChallengeTx(tx *gorm.DB, userID uint) (*models.StreakChallenge, error) {
	var ch models.StreakChallenge
	err := tx.Where("user_id = ? AND status = ?", userID, models.ChallengeActive).
		Order("id DESC").First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// CreateChallenge escrows the wager and starts a challenge. If today is an
// effective workday with activity already logged, day 1 counts immediately;
// if today is a workday without activity yet, the anchor sits at yesterday so
// today's first session credits day 1; on a rest day the count starts with
// the next workday.
func (e *Engine) CreateChallenge(userID uint, daysTarget, wagerPoints int) (*models.StreakChallenge, error) {
	if offer, ok := ChallengeOffers[daysTarget]; !ok || offer != wagerPoints {
		return nil, ErrInvalidOffer
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	var created *models.StreakChallenge
	err := e.db.Transaction(func(tx *gorm.DB) error {
		existing, err := e.activeChallengeTx(tx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrChallengeActive
		}

		if _, err := e.applyTransactionTx(tx, userID, -wagerPoints,
			models.ReasonChallengeWager, fmt.Sprintf("wager for %d days", daysTarget),
			TxRef{}, false); err != nil {
			return err
		}

		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		today := e.today()
		workdayToday, err := e.isEffectiveWorkdayTx(tx, state, today)
		if err != nil {
			return err
		}
		activityToday := false
		if workdayToday {
			activityToday, err = e.hasActivityOnTx(tx, userID, today)
			if err != nil {
				return err
			}
		}

		lastCounted := today
		daysDone := 0
		if workdayToday {
			if activityToday {
				daysDone = 1
			} else {
				lastCounted = addDays(today, -1)
			}
		}

		ch := models.StreakChallenge{
			UserID:          userID,
			DaysTarget:      daysTarget,
			DaysDone:        daysDone,
			WagerPoints:     wagerPoints,
			Status:          models.ChallengeActive,
			StartDate:       formatDate(today),
			LastCountedDate: formatDate(lastCounted),
		}
		if err := tx.Create(&ch).Error; err != nil {
			return err
		}
		created = &ch
		return nil
	})
	return created, err
}

// SurrenderChallenge fails the active challenge on the user's own request.
// The wager stays forfeit, same as any other failure.
func (e *Engine) SurrenderChallenge(userID uint) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	return e.db.Transaction(func(tx *gorm.DB) error {
		ch, err := e.activeChallengeTx(tx, userID)
		if err != nil {
			return err
		}
		if ch == nil {
			return ErrNotFound
		}
		failed, err := e.failChallengeTx(tx, ch)
		if err != nil {
			return err
		}
		if !failed {
			return ErrNotFound
		}
		return nil
	})
}

// failChallengeTx marks an active challenge failed. The guard on status keeps
// the transition idempotent under replays.
func (e *Engine) failChallengeTx(tx *gorm.DB, ch *models.StreakChallenge) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.StreakChallenge{}).
		Where("id = ? AND user_id = ? AND status = ?", ch.ID, ch.UserID, models.ChallengeActive).
		Updates(map[string]interface{}{
			"status":       models.ChallengeFailed,
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (e *Engine) completeChallengeTx(tx *gorm.DB, ch *models.StreakChallenge, payout int) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.StreakChallenge{}).
		Where("id = ? AND user_id = ? AND status = ?", ch.ID, ch.UserID, models.ChallengeActive).
		Updates(map[string]interface{}{
			"status":       models.ChallengeCompleted,
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	_, err := e.applyTransactionTx(tx, ch.UserID, payout,
		models.ReasonChallengeReward, "discipline reward",
		TxRef{Type: "streak_challenge", ID: ch.ID}, false)
	return true, err
}
