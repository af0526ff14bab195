package repository

import (
	"context"
	"time"

	"property-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateAuction creates a new auction
func (r *Repository) CreateAuction(ctx context.Context, auction *models.Auction) error {
	return r.db.WithContext(ctx).Create(auction).Error
}

// GetAuctionByPublicID retrieves an auction with its property and winning bid
func (r *Repository) GetAuctionByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("WinningBid").
		Where("public_id = ?", publicID).
		First(&auction).Error
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// GetAuctionWithBids retrieves an auction with its full bid history,
// highest bid first
func (r *Repository) GetAuctionWithBids(ctx context.Context, publicID uuid.UUID) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("WinningBid").
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("amount DESC").Preload("Bidder")
		}).
		Where("public_id = ?", publicID).
		First(&auction).Error
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

// ListOpenAuctions retrieves auctions still inside their bidding window
func (r *Repository) ListOpenAuctions(ctx context.Context, now time.Time, limit, offset int) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("status IN ? AND end_time > ?",
			[]models.AuctionStatus{models.AuctionStatusScheduled, models.AuctionStatusActive}, now).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&auctions).Error
	if err != nil {
		return nil, err
	}
	return auctions, nil
}

// LockAuction loads an auction row inside tx and holds it until the
// transaction ends, serializing bid acceptance and settlement on the
// same auction. SQLite has a single writer and rejects FOR UPDATE, so
// the clause is only applied on postgres.
func (r *Repository) LockAuction(tx *gorm.DB, auctionID uint) (*models.Auction, error) {
	return r.lockAuction(tx, auctionID, "")
}

// LockAuctionNoWait is LockAuction without blocking: if another
// transaction holds the row, the lock error surfaces immediately instead
// of stalling the caller. Used by the settlement sweeper, which can just
// pick the auction up again on its next tick.
func (r *Repository) LockAuctionNoWait(tx *gorm.DB, auctionID uint) (*models.Auction, error) {
	return r.lockAuction(tx, auctionID, "NOWAIT")
}

func (r *Repository) lockAuction(tx *gorm.DB, auctionID uint, options string) (*models.Auction, error) {
	var auction models.Auction
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: options})
	}
	if err := query.Where("id = ?", auctionID).First(&auction).Error; err != nil {
		return nil, err
	}
	return &auction, nil
}

// CreateBid inserts a bid inside tx
func (r *Repository) CreateBid(tx *gorm.DB, bid *models.Bid) error {
	return tx.Create(bid).Error
}

// UpdateAuctionColumns updates selected auction columns inside tx
func (r *Repository) UpdateAuctionColumns(tx *gorm.DB, auctionID uint, updates map[string]interface{}) error {
	return tx.Model(&models.Auction{}).Where("id = ?", auctionID).Updates(updates).Error
}

// GetHighestBid retrieves the bid with the highest amount for an auction.
// Amounts are strictly increasing per auction, so ordering by amount alone
// is unambiguous; created_at breaks a tie that should never occur.
func (r *Repository) GetHighestBid(tx *gorm.DB, auctionID uint) (*models.Bid, error) {
	var bid models.Bid
	err := tx.Where("auction_id = ?", auctionID).
		Order("amount DESC").
		Order("created_at ASC").
		First(&bid).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListDueAuctions retrieves auctions whose window has closed but whose
// status is still non-terminal. Scheduled rows are included so an auction
// that never received a bid (and so was never promoted to active) still
// settles.
func (r *Repository) ListDueAuctions(ctx context.Context, now time.Time, limit int) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND end_time <= ?",
			[]models.AuctionStatus{models.AuctionStatusScheduled, models.AuctionStatusActive}, now).
		Order("end_time ASC").
		Limit(limit).
		Find(&auctions).Error
	if err != nil {
		return nil, err
	}
	return auctions, nil
}
