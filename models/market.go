package models

import "time"

// MarketItem is a personal reward a user defines for themselves and later
// buys with points.
type MarketItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	CostPoints  int       `gorm:"not null" json:"cost_points"`
	Description string    `gorm:"size:512" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarketPurchase snapshots a buy so the history survives item edits and
// deletions.
type MarketPurchase struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	ItemID     uint      `gorm:"not null" json:"item_id"`
	ItemTitle  string    `gorm:"size:255" json:"item_title"`
	CostPoints int       `gorm:"not null" json:"cost_points"`
	CreatedAt  time.Time `json:"created_at"`
}
