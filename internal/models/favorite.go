package models

import "time"

// FavoriteProperty marks a listing saved by a user
type FavoriteProperty struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_favorites_user_property,priority:1" json:"user_id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_property,priority:2" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FavoriteProperty) TableName() string {
	return "favorite_properties"
}
