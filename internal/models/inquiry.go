package models

import (
	"time"

	"github.com/google/uuid"
)

type InquiryStatus string

const (
	InquiryStatusOpen   InquiryStatus = "open"
	InquiryStatusClosed InquiryStatus = "closed"
)

// PropertyInquiry is a message thread between a buyer and a listing's
// owner. Only those two participants may read or post to it.
type PropertyInquiry struct {
	ID         uint             `gorm:"primaryKey" json:"-"`
	PublicID   uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	PropertyID uint             `gorm:"not null;index" json:"-"`
	Property   *Property        `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	BuyerID    uint             `gorm:"not null;index" json:"buyer_id"`
	Buyer      *User            `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Status     InquiryStatus    `gorm:"size:20;not null;default:open;index" json:"status"`
	Messages   []InquiryMessage `gorm:"foreignKey:InquiryID" json:"messages,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (PropertyInquiry) TableName() string {
	return "property_inquiries"
}

// InquiryMessage is one message in an inquiry thread
type InquiryMessage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PublicID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	InquiryID uint      `gorm:"not null;index" json:"-"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (InquiryMessage) TableName() string {
	return "inquiry_messages"
}

// OpenInquiryRequest starts a new inquiry thread on a listing
type OpenInquiryRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	Message    string `json:"message" binding:"required,max=2000"`
}

// InquiryMessageRequest posts a reply to an existing thread
type InquiryMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}
