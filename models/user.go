package models

import (
	"time"

	"gorm.io/gorm"
)

// User holds the profile and the points balance. The balance is never written
// directly; every change goes through a PointTransaction in the same database
// transaction.
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Username          string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash      string         `gorm:"size:255" json:"-"`
	RatePerHour       float64        `gorm:"default:0" json:"rate_per_hour"`
	GoalAmount        float64        `gorm:"default:0" json:"goal_amount"`
	PointsBalance     int            `gorm:"default:0" json:"points_balance"`
	PointsPerMinute   int            `gorm:"default:1" json:"points_per_minute"`
	NotificationsMode string         `gorm:"size:16;default:'off'" json:"notifications_mode"`
	NotificationsHour int            `gorm:"default:21" json:"notifications_hour"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// Notification cadence values accepted for NotificationsMode.
const (
	NotifyOff    = "off"
	NotifyHourly = "hourly"
	NotifyDaily  = "daily"
	NotifyWeekly = "weekly"
)

// IsConfigured reports whether rate and goal have been set up. Derived
// computations (earnings, remaining time) short-circuit until this is true.
func (u *User) IsConfigured() bool {
	return u.RatePerHour > 0 && u.GoalAmount > 0
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
