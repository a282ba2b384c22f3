package models

import "time"

// HabitState is the per-user streak/league record. One row per user, created
// lazily on first access. Dates are stored as civil dates (YYYY-MM-DD) since
// streak accounting works in whole days, not instants.
type HabitState struct {
	UserID            uint      `gorm:"primaryKey" json:"user_id"`
	StreakDays        int       `gorm:"default:0" json:"streak_days"`
	StreakLastCounted string    `gorm:"size:10" json:"streak_last_counted_date"`
	StreakFreezes     int       `gorm:"default:1" json:"streak_freezes"`
	LeagueTier        int       `gorm:"default:1" json:"league_tier"`
	LeagueWeekStart   string    `gorm:"size:10" json:"league_week_start"`
	WorkdaysMask      string    `gorm:"size:7" json:"workdays_mask"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DayOverride flips the effective workday status of a single calendar date,
// superseding the weekly mask. Unique per (user, date); rows that would equal
// the regular mask value are deleted instead of stored.
type DayOverride struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_override_user_date;not null" json:"user_id"`
	TargetDate string    `gorm:"size:10;uniqueIndex:idx_override_user_date;not null" json:"target_date"`
	IsWorkday  bool      `json:"is_workday"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
