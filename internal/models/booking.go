package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a guest's stay request on a bookable listing.
// TotalPrice is fixed at request time from the listing's nightly rate.
type Booking struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	PublicID   uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	PropertyID uint            `gorm:"not null;index" json:"-"`
	Property   *Property       `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	GuestID    uint            `gorm:"not null;index" json:"guest_id"`
	Guest      *User           `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	CheckIn    time.Time       `gorm:"not null;index" json:"check_in"`
	CheckOut   time.Time       `gorm:"not null" json:"check_out"`
	Guests     int             `gorm:"not null;default:1" json:"guests"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_price"`
	Status     BookingStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	Note       string          `gorm:"size:500" json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest represents a guest's stay request
type CreateBookingRequest struct {
	PropertyID string    `json:"property_id" binding:"required,uuid"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"required,min=1"`
	Note       string    `json:"note"`
}
