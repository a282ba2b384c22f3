package models

import "time"

// ChallengeStatus is the lifecycle state of a streak challenge.
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

// StreakChallenge is a wagered bet on N consecutive workdays of activity.
// At most one active challenge per user; the wager is escrowed on creation
// and forfeited on failure or surrender.
type StreakChallenge struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	DaysTarget      int             `gorm:"not null" json:"days_target"`
	DaysDone        int             `gorm:"default:0" json:"days_done"`
	WagerPoints     int             `gorm:"not null" json:"wager_points"`
	Status          ChallengeStatus `gorm:"size:16;index;not null" json:"status"`
	StartDate       string          `gorm:"size:10" json:"start_date"`
	LastCountedDate string          `gorm:"size:10" json:"last_counted_date"`
	CompletedAt     *time.Time      `json:"completed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
