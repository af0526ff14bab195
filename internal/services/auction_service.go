package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-market/internal/logging"
	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OutcomePublisher announces accepted bids and settlement results to the
// listeners of an auction's topic. Implementations live outside the core.
type OutcomePublisher interface {
	// PublishBidPlaced notifies the auction's topic, skipping the
	// connection identified by excludeConnID (no self-echo).
	PublishBidPlaced(auctionID uuid.UUID, excludeConnID string, event *models.BidPlacedEvent)
	// PublishAuctionUpdated notifies every listener on the auction's topic.
	PublishAuctionUpdated(auctionID uuid.UUID, event *models.AuctionUpdatedEvent)
}

// BidProvenance carries audit metadata attached to an accepted bid.
// ConnectionID identifies the bidder's realtime connection so the bid
// broadcast can exclude it.
type BidProvenance struct {
	IPAddress    string
	UserAgent    string
	ConnectionID string
}

// AuctionService implements auction authoring, bid acceptance and settlement
type AuctionService struct {
	repo       *repository.Repository
	publisher  OutcomePublisher
	bidRetries int
}

// NewAuctionService creates a new AuctionService
func NewAuctionService(repo *repository.Repository, publisher OutcomePublisher, bidRetries int) *AuctionService {
	if bidRetries < 1 {
		bidRetries = 1
	}
	return &AuctionService{
		repo:       repo,
		publisher:  publisher,
		bidRetries: bidRetries,
	}
}

// AuthorAuction creates a scheduled auction for an approved listing owned
// by the seller. No notification is sent on creation.
func (s *AuctionService) AuthorAuction(ctx context.Context, sellerID uint, req *models.CreateAuctionRequest) (*models.Auction, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid property id", ErrInvalidInput)
	}

	now := time.Now()
	if !req.StartTime.After(now) {
		return nil, fmt.Errorf("%w: start_time must be in the future", ErrInvalidInput)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidInput)
	}
	if req.StartingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: starting_price must not be negative", ErrInvalidInput)
	}
	if req.ReservePrice != nil && req.ReservePrice.IsNegative() {
		return nil, fmt.Errorf("%w: reserve_price must not be negative", ErrInvalidInput)
	}

	property, err := s.repo.GetPropertyByPublicID(ctx, propertyID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.OwnerID != sellerID {
		return nil, ErrUnauthorized
	}
	if property.Status != models.PropertyStatusApproved {
		return nil, fmt.Errorf("%w: listing must be approved before it can be auctioned", ErrInvalidInput)
	}

	auction := &models.Auction{
		PublicID:      uuid.New(),
		PropertyID:    property.ID,
		SellerID:      sellerID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		Status:        models.AuctionStatusScheduled,
	}

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	logging.Info("auction created", map[string]any{
		"auction_id":  auction.PublicID,
		"property_id": property.PublicID,
		"seller_id":   sellerID,
		"start_time":  auction.StartTime,
		"end_time":    auction.EndTime,
	})

	return auction, nil
}

// PlaceBid admits a bid against a live auction. The floor check and both
// writes happen inside a single transaction holding the auction row lock,
// so two bidders racing on the same auction are serialized; storage-level
// conflicts are retried a bounded number of times before surfacing.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidderID uint, amount decimal.Decimal, prov BidProvenance) (*models.Bid, error) {
	auction, err := s.repo.GetAuctionByPublicID(ctx, auctionID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}

	var bid *models.Bid
	for attempt := 1; attempt <= s.bidRetries; attempt++ {
		bid, err = s.tryPlaceBid(ctx, auction.ID, bidderID, amount, prov)
		if err == nil {
			break
		}
		if errors.Is(err, ErrAuctionNotActive) || errors.Is(err, ErrBidTooLow) {
			return nil, err
		}
		if !isRetryableTxError(err) {
			return nil, fmt.Errorf("failed to place bid: %w", err)
		}

		logging.Warn("bid transaction conflict, retrying", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	logging.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"bid_id":     bid.PublicID,
		"bidder_id":  bidderID,
		"amount":     amount.String(),
	})

	if s.publisher != nil {
		s.publisher.PublishBidPlaced(auctionID, prov.ConnectionID, &models.BidPlacedEvent{
			Bid:          bid,
			CurrentPrice: amount,
			AuctionID:    auctionID,
		})
	}

	return bid, nil
}

// tryPlaceBid runs one locked attempt at the read-compare-write sequence
func (s *AuctionService) tryPlaceBid(ctx context.Context, auctionRowID uint, bidderID uint, amount decimal.Decimal, prov BidProvenance) (*models.Bid, error) {
	var bid *models.Bid

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		auction, err := s.repo.LockAuction(tx, auctionRowID)
		if err != nil {
			return fmt.Errorf("failed to lock auction: %w", err)
		}

		now := time.Now()
		if !auction.Biddable(now) {
			return ErrAuctionNotActive
		}

		if !amount.GreaterThan(auction.EffectiveFloor()) {
			return ErrBidTooLow
		}

		bid = &models.Bid{
			PublicID:  uuid.New(),
			AuctionID: auction.ID,
			BidderID:  bidderID,
			Amount:    amount,
			IPAddress: prov.IPAddress,
			UserAgent: prov.UserAgent,
		}
		if err := s.repo.CreateBid(tx, bid); err != nil {
			return fmt.Errorf("failed to create bid: %w", err)
		}

		updates := map[string]interface{}{
			"current_price": amount,
		}
		// Lazy scheduled -> active promotion on the first in-window bid
		if auction.Status == models.AuctionStatusScheduled {
			updates["status"] = models.AuctionStatusActive
		}

		if err := s.repo.UpdateAuctionColumns(tx, auction.ID, updates); err != nil {
			return fmt.Errorf("failed to update current price: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return bid, nil
}

// GetAuction retrieves an auction with its bid history
func (s *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	auction, err := s.repo.GetAuctionWithBids(ctx, auctionID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

// ListOpenAuctions retrieves auctions still inside their bidding window
func (s *AuctionService) ListOpenAuctions(ctx context.Context, limit, offset int) ([]*models.Auction, error) {
	return s.repo.ListOpenAuctions(ctx, time.Now(), limit, offset)
}
