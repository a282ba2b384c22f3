package engine

import (
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// Work-log aggregates are recomputed from scratch on every call. Call volume
// is per interactive user, so correctness wins over caching.

// TotalSeconds sums every logged session.
func (e *Engine) TotalSeconds(userID uint) (int, error) {
	return e.sumSeconds(e.db.Model(&models.WorkSession{}).Where("user_id = ?", userID))
}

// PeriodSeconds sums sessions logged at or after since.
func (e *Engine) PeriodSeconds(userID uint, since time.Time) (int, error) {
	return e.sumSeconds(e.db.Model(&models.WorkSession{}).
		Where("user_id = ? AND created_at >= ?", userID, since))
}

// RangeSeconds sums sessions inside [start, end]. An empty or inverted range
// is zero.
func (e *Engine) RangeSeconds(userID uint, start, end time.Time) (int, error) {
	return e.rangeSecondsTx(e.db, userID, start, end)
}

func (e *Engine) rangeSecondsTx(tx *gorm.DB, userID uint, start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, nil
	}
	return e.sumSeconds(tx.Model(&models.WorkSession{}).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end))
}

func (e *Engine) sumSeconds(q *gorm.DB) (int, error) {
	var total int64
	if err := q.Select("COALESCE(SUM(duration_seconds), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

// HasActivityOn reports whether any session falls on the given civil date.
func (e *Engine) HasActivityOn(userID uint, date time.Time) (bool, error) {
	return e.hasActivityOnTx(e.db, userID, date)
}

func (e *Engine) hasActivityOnTx(tx *gorm.DB, userID uint, date time.Time) (bool, error) {
	secs, err := e.rangeSecondsTx(tx, userID, startOfDay(date), endOfDay(date))
	return secs > 0, err
}

// DailyStat is one day's total for report rendering.
type DailyStat struct {
	Date    string `json:"date"`
	Seconds int    `json:"seconds"`
}

// DailyStats returns per-day totals for the trailing window, zero-filled so
// charts get a continuous axis.
func (e *Engine) DailyStats(userID uint, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 14
	}
	since := addDays(e.today(), -(days - 1))

	var sessions []models.WorkSession
	if err := e.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]int, days)
	stats := make([]DailyStat, 0, days)
	for i := 0; i < days; i++ {
		key := formatDate(addDays(since, i))
		totals[key] = 0
		stats = append(stats, DailyStat{Date: key})
	}
	for _, s := range sessions {
		key := formatDate(s.CreatedAt.In(e.loc))
		if _, ok := totals[key]; ok {
			totals[key] += s.DurationSeconds
		}
	}
	for i := range stats {
		stats[i].Seconds = totals[stats[i].Date]
	}
	return stats, nil
}

// RecentSessions lists the newest sessions first.
func (e *Engine) RecentSessions(userID uint, limit int) ([]models.WorkSession, error) {
	if limit <= 0 {
		limit = 20
	}
	var sessions []models.WorkSession
	err := e.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// ResetProgress deletes all sessions, the only bulk deletion in the system.
// The ledger and habit state survive; optionally the goal amount is cleared.
func (e *Engine) ResetProgress(userID uint, keepGoal bool) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.WorkSession{}).Error; err != nil {
			return err
		}
		if keepGoal {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"goal_amount": 0, "updated_at": time.Now()}).Error
	})
}
