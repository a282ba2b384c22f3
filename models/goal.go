package models

import "time"

// GoalStatus is the lifecycle state of a bonus goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalExpired   GoalStatus = "expired"
)

// GoalTargetType selects what a bonus goal measures.
type GoalTargetType string

const (
	GoalTargetMoney GoalTargetType = "money"
	GoalTargetHours GoalTargetType = "hours"
)

// BonusGoal is a user-defined deadline-bound target paying a fixed point
// reward when reached before the deadline. Multiple active goals may coexist.
type BonusGoal struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	TargetType   GoalTargetType `gorm:"size:16;not null" json:"target_type"`
	TargetValue  float64        `gorm:"not null" json:"target_value"`
	RewardPoints int            `gorm:"not null" json:"reward_points"`
	StartAt      time.Time      `gorm:"not null" json:"start_at"`
	DeadlineAt   time.Time      `gorm:"not null" json:"deadline_at"`
	Status       GoalStatus     `gorm:"size:16;index;not null" json:"status"`
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
