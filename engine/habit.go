package engine

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

const (
	// MaxStreakFreezes caps the freeze inventory.
	MaxStreakFreezes = 2
	// FreezeCost is the point price of one streak freeze.
	FreezeCost = 120
	// DefaultWorkdaysMask marks Monday through Friday, indexed Mon..Sun.
	DefaultWorkdaysMask = "1111100"
)

// NormalizeWorkdaysMask replaces malformed or all-zero masks with the default.
// An all-zero mask would make every streak rule vacuous, so it is rejected.
func NormalizeWorkdaysMask(mask string) string {
	if len(mask) != 7 || strings.Trim(mask, "01") != "" {
		return DefaultWorkdaysMask
	}
	if mask == "0000000" {
		return DefaultWorkdaysMask
	}
	return mask
}

func maskWorkday(mask string, d time.Time) bool {
	return NormalizeWorkdaysMask(mask)[weekdayIndex(d)] == '1'
}

func clampFreezes(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxStreakFreezes {
		return MaxStreakFreezes
	}
	return n
}

// HabitState loads (and lazily creates) the per-user habit row.
func (e *Engine) HabitState(userID uint) (*models.HabitState, error) {
	var state *models.HabitState
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		state, txErr = e.habitStateTx(tx, userID)
		return txErr
	})
	return state, err
}

func (e *Engine) habitStateTx(tx *gorm.DB, userID uint) (*models.HabitState, error) {
	var state models.HabitState
	err := tx.First(&state, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.HabitState{
			UserID:          userID,
			StreakDays:      0,
			StreakFreezes:   1,
			LeagueTier:      1,
			LeagueWeekStart: formatDate(weekStartSunday(e.today())),
			WorkdaysMask:    DefaultWorkdaysMask,
		}
		if err := tx.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	state.WorkdaysMask = NormalizeWorkdaysMask(state.WorkdaysMask)
	state.LeagueTier = clampTier(state.LeagueTier)
	return &state, nil
}

// saveHabitStateTx clamps invariants before writing: freezes within
// [0, MaxStreakFreezes], tier within the league table, mask never all-zero.
func saveHabitStateTx(tx *gorm.DB, state *models.HabitState) error {
	if state.StreakDays < 0 {
		state.StreakDays = 0
	}
	state.StreakFreezes = clampFreezes(state.StreakFreezes)
	state.LeagueTier = clampTier(state.LeagueTier)
	state.WorkdaysMask = NormalizeWorkdaysMask(state.WorkdaysMask)
	state.UpdatedAt = time.Now()
	return tx.Save(state).Error
}

// dayOverrideTx returns the override for a date, or nil when none is stored.
func (e *Engine) dayOverrideTx(tx *gorm.DB, userID uint, date time.Time) (*bool, error) {
	var override models.DayOverride
	err := tx.First(&override, "user_id = ? AND target_date = ?", userID, formatDate(date)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := override.IsWorkday
	return &v, nil
}

// IsEffectiveWorkday reports whether a date counts as a required workday after
// applying any stored override on top of the weekly mask.
func (e *Engine) IsEffectiveWorkday(userID uint, date time.Time) (bool, error) {
	var effective bool
	err := e.db.Transaction(func(tx *gorm.DB) error {
		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		effective, err = e.isEffectiveWorkdayTx(tx, state, date)
		return err
	})
	return effective, err
}

// isEffectiveWorkdayTx applies the override-then-mask rule for one date.
func (e *Engine) isEffectiveWorkdayTx(tx *gorm.DB, state *models.HabitState, date time.Time) (bool, error) {
	override, err := e.dayOverrideTx(tx, state.UserID, date)
	if err != nil {
		return false, err
	}
	if override != nil {
		return *override, nil
	}
	return maskWorkday(state.WorkdaysMask, date), nil
}

// requiredWorkdaysBetween enumerates effective workdays in [start, end],
// chronologically. The window is clipped to MaxCatchUpDays from the end so a
// user away for years cannot trigger unbounded iteration.
func (e *Engine) requiredWorkdaysBetween(tx *gorm.DB, state *models.HabitState, start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, nil
	}
	if floor := addDays(end, -(e.MaxCatchUpDays - 1)); start.Before(floor) {
		start = floor
	}
	var days []time.Time
	for cursor := start; !cursor.After(end); cursor = addDays(cursor, 1) {
		workday, err := e.isEffectiveWorkdayTx(tx, state, cursor)
		if err != nil {
			return nil, err
		}
		if workday {
			days = append(days, cursor)
		}
	}
	return days, nil
}

// ToggleWeekday flips one position of the regular weekly mask (0=Mon..6=Sun).
func (e *Engine) ToggleWeekday(userID uint, weekdayIdx int) (*models.HabitState, error) {
	if weekdayIdx < 0 || weekdayIdx > 6 {
		return nil, ErrNotFound
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	var state *models.HabitState
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		state, txErr = e.habitStateTx(tx, userID)
		if txErr != nil {
			return txErr
		}
		mask := []byte(NormalizeWorkdaysMask(state.WorkdaysMask))
		if mask[weekdayIdx] == '1' {
			mask[weekdayIdx] = '0'
		} else {
			mask[weekdayIdx] = '1'
		}
		state.WorkdaysMask = NormalizeWorkdaysMask(string(mask))
		return saveHabitStateTx(tx, state)
	})
	return state, err
}

// ToggleDay flips the effective status of one date. When the flip lands back
// on the regular mask value the stored override collapses to nothing.
func (e *Engine) ToggleDay(userID uint, date time.Time) (bool, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var newEffective bool
	err := e.db.Transaction(func(tx *gorm.DB) error {
		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		effective, err := e.isEffectiveWorkdayTx(tx, state, date)
		if err != nil {
			return err
		}
		newEffective = !effective
		regular := maskWorkday(state.WorkdaysMask, date)
		dateStr := formatDate(date)
		if newEffective == regular {
			return tx.Where("user_id = ? AND target_date = ?", userID, dateStr).
				Delete(&models.DayOverride{}).Error
		}
		var override models.DayOverride
		err = tx.First(&override, "user_id = ? AND target_date = ?", userID, dateStr).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.DayOverride{
				UserID:     userID,
				TargetDate: dateStr,
				IsWorkday:  newEffective,
			}).Error
		}
		if err != nil {
			return err
		}
		override.IsWorkday = newEffective
		override.UpdatedAt = time.Now()
		return tx.Save(&override).Error
	})
	return newEffective, err
}

// ListOverrides returns upcoming overrides from a date onwards.
func (e *Engine) ListOverrides(userID uint, from time.Time, limit int) ([]models.DayOverride, error) {
	if limit <= 0 {
		limit = 20
	}
	var overrides []models.DayOverride
	err := e.db.Where("user_id = ? AND target_date >= ?", userID, formatDate(from)).
		Order("target_date ASC").Limit(limit).Find(&overrides).Error
	return overrides, err
}

// BuyFreeze purchases one streak freeze for FreezeCost points.
func (e *Engine) BuyFreeze(userID uint) (int, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var balance int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		if state.StreakFreezes >= MaxStreakFreezes {
			return ErrFreezeCap
		}
		balance, err = e.applyTransactionTx(tx, userID, -FreezeCost,
			models.ReasonFreezePurchase, "streak freeze", TxRef{}, false)
		if err != nil {
			return err
		}
		state.StreakFreezes++
		return saveHabitStateTx(tx, state)
	})
	return balance, err
}

// IncrementFreeze adds one freeze, silently capped. This is the only habit
// mutation exposed to the casino collaborator (jackpot bonus).
func (e *Engine) IncrementFreeze(userID uint) (int, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var freezes int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		state, err := e.habitStateTx(tx, userID)
		if err != nil {
			return err
		}
		if state.StreakFreezes < MaxStreakFreezes {
			state.StreakFreezes++
			if err := saveHabitStateTx(tx, state); err != nil {
				return err
			}
		}
		freezes = state.StreakFreezes
		return nil
	})
	return freezes, err
}
