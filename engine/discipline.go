package engine

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// EvaluateDiscipline runs the full catch-up sequence: league rollover first,
// then the active challenge's own missed-day check, then the streak replay.
// It is idempotent; running it twice with no new activity changes nothing.
func (e *Engine) EvaluateDiscipline(userID uint) ([]string, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var events []string
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		events, txErr = e.evaluateDisciplineTx(tx, userID)
		return txErr
	})
	return events, err
}

func (e *Engine) evaluateDisciplineTx(tx *gorm.DB, userID uint) ([]string, error) {
	state, err := e.habitStateTx(tx, userID)
	if err != nil {
		return nil, err
	}

	events, err := e.rolloverLeagueTx(tx, state)
	if err != nil {
		return events, err
	}

	today := e.today()
	yesterday := addDays(today, -1)

	// The challenge keeps its own anchor: a miss fails it regardless of
	// freezes, and before the streak loop runs so the loop sees the right
	// challenge-active flag.
	challenge, err := e.activeChallengeTx(tx, userID)
	if err != nil {
		return events, err
	}
	if challenge != nil {
		lastCh := e.parseDate(challenge.LastCountedDate)
		if lastCh.IsZero() {
			lastCh = yesterday
		}
		missed, err := e.requiredWorkdaysBetween(tx, state, addDays(lastCh, 1), yesterday)
		if err != nil {
			return events, err
		}
		if len(missed) > 0 {
			failed, err := e.failChallengeTx(tx, challenge)
			if err != nil {
				return events, err
			}
			if failed {
				events = append(events, fmt.Sprintf(
					"Streak challenge failed: missed a required workday, wager of %d points forfeited",
					challenge.WagerPoints))
			}
			challenge = nil
		}
	}

	last := e.parseDate(state.StreakLastCounted)
	if last.IsZero() {
		return events, nil
	}

	missed, err := e.requiredWorkdaysBetween(tx, state, addDays(last, 1), yesterday)
	if err != nil {
		return events, err
	}
	dayEvents, changed := applyMissedWorkdays(state, missed, challenge != nil)
	events = append(events, dayEvents...)
	if changed {
		if err := saveHabitStateTx(tx, state); err != nil {
			return events, err
		}
	}
	return events, nil
}

// applyMissedWorkdays replays missed effective workdays against the streak,
// oldest first. A pure function over the snapshot so the rules are testable
// without a store:
//
//   - challenge active and a live streak: the streak breaks immediately,
//     freezes are not consulted;
//   - live streak with a freeze: one freeze absorbs one missed day;
//   - live streak without a freeze: the streak breaks and the replay stops,
//     a broken streak does not keep consuming history;
//   - no streak: the anchor just advances.
func applyMissedWorkdays(state *models.HabitState, missed []time.Time, challengeActive bool) ([]string, bool) {
	var events []string
	changed := false
	for _, day := range missed {
		if challengeActive && state.StreakDays > 0 {
			state.StreakDays = 0
			state.StreakLastCounted = formatDate(day)
			events = append(events, "Streak broken: missed workday during an active challenge")
			changed = true
			break
		}
		if state.StreakDays > 0 && state.StreakFreezes > 0 {
			state.StreakFreezes--
			state.StreakLastCounted = formatDate(day)
			events = append(events, fmt.Sprintf("Streak freeze used for %s (%d/%d left)",
				formatDate(day), state.StreakFreezes, MaxStreakFreezes))
			changed = true
			continue
		}
		if state.StreakDays > 0 {
			state.StreakDays = 0
			state.StreakLastCounted = formatDate(day)
			events = append(events, fmt.Sprintf("Streak broken: no freeze left for %s", formatDate(day)))
			changed = true
			break
		}
		state.StreakLastCounted = formatDate(day)
		changed = true
	}
	return events, changed
}

// registerActivityDayTx counts today toward the streak and the active
// challenge. Only meaningful when today is an effective workday; on a rest
// day nothing moves. Assumes catch-up already ran in the same transaction.
func (e *Engine) registerActivityDayTx(tx *gorm.DB, userID uint) ([]string, error) {
	state, err := e.habitStateTx(tx, userID)
	if err != nil {
		return nil, err
	}
	today := e.today()
	yesterday := addDays(today, -1)
	todayStr := formatDate(today)

	workday, err := e.isEffectiveWorkdayTx(tx, state, today)
	if err != nil {
		return nil, err
	}
	if !workday {
		return []string{"Rest day: streak and challenge unchanged"}, nil
	}

	var events []string
	last := e.parseDate(state.StreakLastCounted)
	switch {
	case state.StreakDays <= 0 || last.IsZero():
		state.StreakDays = 1
		state.StreakLastCounted = todayStr
	case last.Equal(today):
		// already counted
	default:
		missed, err := e.requiredWorkdaysBetween(tx, state, addDays(last, 1), yesterday)
		if err != nil {
			return nil, err
		}
		if len(missed) > 0 {
			state.StreakDays = 1
		} else {
			state.StreakDays++
		}
		state.StreakLastCounted = todayStr
	}
	if err := saveHabitStateTx(tx, state); err != nil {
		return nil, err
	}

	challenge, err := e.activeChallengeTx(tx, userID)
	if err != nil {
		return events, err
	}
	if challenge != nil {
		lastCh := e.parseDate(challenge.LastCountedDate)
		if lastCh.IsZero() {
			lastCh = yesterday
		}
		if !lastCh.Equal(today) {
			missed, err := e.requiredWorkdaysBetween(tx, state, addDays(lastCh, 1), yesterday)
			if err != nil {
				return events, err
			}
			if len(missed) > 0 {
				failed, err := e.failChallengeTx(tx, challenge)
				if err != nil {
					return events, err
				}
				if failed {
					events = append(events, fmt.Sprintf(
						"Streak challenge failed: missed a required workday, wager of %d points forfeited",
						challenge.WagerPoints))
				}
				challenge = nil
			} else {
				challenge.DaysDone++
				challenge.LastCountedDate = todayStr
				if err := tx.Model(&models.StreakChallenge{}).
					Where("id = ? AND user_id = ? AND status = ?", challenge.ID, userID, models.ChallengeActive).
					Updates(map[string]interface{}{
						"days_done":         challenge.DaysDone,
						"last_counted_date": todayStr,
						"updated_at":        time.Now(),
					}).Error; err != nil {
					return events, err
				}
			}
		}

		if challenge != nil && challenge.DaysDone >= challenge.DaysTarget {
			payout := ChallengePayout(challenge.WagerPoints)
			completed, err := e.completeChallengeTx(tx, challenge, payout)
			if err != nil {
				return events, err
			}
			if completed {
				events = append(events, fmt.Sprintf(
					"Streak challenge completed: %d workdays in a row, +%d points",
					challenge.DaysTarget, payout))
			}
		}
	}

	return events, nil
}

// RegisterActivity is the write path for a confirmed time entry: catch-up,
// session insert, point credit, streak/challenge advance and bonus-goal
// evaluation, all in one transaction under the user's lock.
func (e *Engine) RegisterActivity(userID uint, durationSeconds int, source, note string) ([]string, int, error) {
	if durationSeconds <= 0 {
		return nil, 0, ErrInvalidInput
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	var events []string
	var points int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return ErrNotFound
		}

		catchUp, err := e.evaluateDisciplineTx(tx, userID)
		if err != nil {
			return err
		}
		events = append(events, catchUp...)

		session := models.WorkSession{
			UserID:          userID,
			DurationSeconds: durationSeconds,
			Source:          source,
			Note:            note,
			CreatedAt:       e.nowIn(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		points, err = e.creditForSessionTx(tx, &user, session.ID, durationSeconds, source)
		if err != nil {
			return err
		}

		dayEvents, err := e.registerActivityDayTx(tx, userID)
		if err != nil {
			return err
		}
		events = append(events, dayEvents...)

		goalEvents, err := e.evaluateBonusGoalsTx(tx, userID)
		if err != nil {
			return err
		}
		events = append(events, goalEvents...)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return events, points, nil
}
