package models

import "time"

// ModerationLog records an admin action taken on a listing
type ModerationLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	Action     string    `gorm:"size:50;not null" json:"action"` // property_approved, property_rejected
	Reason     *string   `gorm:"size:500" json:"reason,omitempty"`
	FromStatus string    `gorm:"size:20" json:"from_status"`
	ToStatus   string    `gorm:"size:20" json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}
