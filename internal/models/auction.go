package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionStatusScheduled AuctionStatus = "scheduled"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusUnsold    AuctionStatus = "unsold"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsTerminal reports whether the status can never change again.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusCompleted || s == AuctionStatusUnsold || s == AuctionStatusCancelled
}

// Auction represents a time-boxed sale of a property listing.
// CurrentPrice is a cached projection of the highest accepted bid;
// the bid rows are the source of truth.
type Auction struct {
	ID            uint             `gorm:"primaryKey" json:"-"`
	PublicID      uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	PropertyID    uint             `gorm:"not null;index" json:"-"`
	Property      *Property        `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	SellerID      uint             `gorm:"not null;index" json:"seller_id"`
	StartTime     time.Time        `gorm:"not null" json:"start_time"`
	EndTime       time.Time        `gorm:"not null;index:idx_auctions_status_end,priority:2" json:"end_time"`
	StartingPrice decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"starting_price"`
	ReservePrice  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"reserve_price,omitempty"`
	CurrentPrice  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"current_price,omitempty"`
	Status        AuctionStatus    `gorm:"size:20;not null;default:scheduled;index:idx_auctions_status_end,priority:1" json:"status"`
	WinningBidID  *uint            `json:"-"`
	WinningBid    *Bid             `gorm:"foreignKey:WinningBidID" json:"winning_bid,omitempty"`
	Bids          []Bid            `gorm:"foreignKey:AuctionID" json:"bids,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (Auction) TableName() string {
	return "auctions"
}

// Biddable reports whether the auction can accept bids at the given instant.
// Activity is derived from the window, not from a stored flip: a scheduled
// auction inside its window is biddable even if no tick has promoted it yet.
func (a *Auction) Biddable(now time.Time) bool {
	if a.Status != AuctionStatusScheduled && a.Status != AuctionStatusActive {
		return false
	}
	return !now.Before(a.StartTime) && now.Before(a.EndTime)
}

// EffectiveFloor is the amount a new bid must strictly exceed.
func (a *Auction) EffectiveFloor() decimal.Decimal {
	if a.CurrentPrice != nil {
		return *a.CurrentPrice
	}
	return a.StartingPrice
}

// Bid is an immutable record of an accepted bid. IPAddress and UserAgent
// are audit provenance only and never influence business logic.
type Bid struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	PublicID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	AuctionID uint            `gorm:"not null;index:idx_bids_auction_amount,priority:1" json:"-"`
	BidderID  uint            `gorm:"not null;index" json:"bidder_id"`
	Bidder    *User           `gorm:"foreignKey:BidderID" json:"bidder,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null;index:idx_bids_auction_amount,priority:2" json:"amount"`
	IPAddress string          `gorm:"size:45" json:"-"`
	UserAgent string          `gorm:"size:255" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Bid) TableName() string {
	return "bids"
}

// CreateAuctionRequest represents a seller's request to put a listing up for auction
type CreateAuctionRequest struct {
	PropertyID    string           `json:"property_id" binding:"required,uuid"`
	StartTime     time.Time        `json:"start_time" binding:"required"`
	EndTime       time.Time        `json:"end_time" binding:"required"`
	StartingPrice decimal.Decimal  `json:"starting_price" binding:"required"`
	ReservePrice  *decimal.Decimal `json:"reserve_price"`
}

// PlaceBidRequest represents a buyer's bid on an auction
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// BidPlacedEvent is broadcast to an auction's topic when a bid is accepted
type BidPlacedEvent struct {
	Bid          *Bid            `json:"bid"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	AuctionID    uuid.UUID       `json:"auction_id"`
}

// AuctionUpdatedEvent is broadcast to an auction's topic after settlement
type AuctionUpdatedEvent struct {
	Auction *Auction `json:"auction"`
}
