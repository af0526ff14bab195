package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "draft"
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"
)

// Property represents a listing a seller can offer for sale, auction or,
// when it carries a nightly rate, short-stay booking
type Property struct {
	ID              uint             `gorm:"primaryKey" json:"-"`
	PublicID        uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	OwnerID         uint             `gorm:"not null;index" json:"owner_id"`
	Owner           *User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Slug            string           `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Type            string           `gorm:"size:50" json:"type"` // house, apartment, land, commercial
	Description     string           `gorm:"type:text" json:"description"`
	Price           decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"price"`
	NightlyRate     *decimal.Decimal `gorm:"type:decimal(15,2)" json:"nightly_rate,omitempty"`
	Currency        string           `gorm:"size:3;default:USD" json:"currency"`
	Address         string           `gorm:"size:255" json:"address"`
	City            string           `gorm:"size:100;index" json:"city"`
	Country         string           `gorm:"size:100" json:"country"`
	Status          PropertyStatus   `gorm:"size:20;not null;default:draft;index" json:"status"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	ApprovedByID    *uint            `json:"-"`
	RejectionReason *string          `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Bookable reports whether the listing accepts stay requests
func (p *Property) Bookable() bool {
	return p.Status == PropertyStatusApproved && p.NightlyRate != nil
}

func (Property) TableName() string {
	return "properties"
}

// CreatePropertyRequest represents an owner's new listing submission
type CreatePropertyRequest struct {
	Title       string           `json:"title" binding:"required"`
	Type        string           `json:"type" binding:"required"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" binding:"required"`
	NightlyRate *decimal.Decimal `json:"nightly_rate"`
	Currency    string           `json:"currency"`
	Address     string           `json:"address"`
	City        string           `json:"city" binding:"required"`
	Country     string           `json:"country" binding:"required"`
}

// UpdatePropertyRequest carries partial updates to an owned listing
type UpdatePropertyRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	NightlyRate *decimal.Decimal `json:"nightly_rate"`
	Address     *string          `json:"address"`
	City        *string          `json:"city"`
	Country     *string          `json:"country"`
}

// RejectPropertyRequest carries the moderator's rejection reason
type RejectPropertyRequest struct {
	Reason string `json:"reason" binding:"required"`
}
