package models

import "time"

// WorkSession is one immutable logged chunk of work time. Sessions are only
// ever deleted in bulk by the reset-progress operation.
type WorkSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	DurationSeconds int       `gorm:"not null" json:"duration_seconds"`
	Source          string    `gorm:"size:32" json:"source"`
	Note            string    `gorm:"size:255" json:"note"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
