package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-market/internal/logging"
	"property-market/internal/models"

	"gorm.io/gorm"
)

// sweepBatchSize caps how many due auctions one sweep will process
const sweepBatchSize = 100

// errAuctionLocked marks an auction whose row lock was held by another
// transaction; the next sweep tick picks it up again
var errAuctionLocked = errors.New("auction locked by another transaction")

// SweepEndedAuctions finds every auction whose window has closed and
// settles each in its own transaction. A failure on one auction is logged
// and retried on the next sweep; it never aborts the rest of the batch.
func (s *AuctionService) SweepEndedAuctions(ctx context.Context) {
	auctions, err := s.repo.ListDueAuctions(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		logging.Error("failed to list due auctions", map[string]any{
			"error": err.Error(),
		})
		return
	}

	if len(auctions) == 0 {
		return
	}

	for _, auction := range auctions {
		if err := s.settleAuction(ctx, auction.ID); err != nil {
			if errors.Is(err, errAuctionLocked) {
				logging.Info("auction locked, deferring to next sweep", map[string]any{
					"auction_id": auction.PublicID,
				})
				continue
			}
			logging.Error("settlement failed, will retry next sweep", map[string]any{
				"auction_id": auction.PublicID,
				"error":      err.Error(),
			})
		}
	}
}

// settleAuction resolves a single auction exactly once. The auction row
// lock makes concurrent settlement of the same auction mutually exclusive,
// and the post-lock status re-check makes a second settlement a no-op with
// no duplicate publication.
func (s *AuctionService) settleAuction(ctx context.Context, auctionRowID uint) error {
	var (
		finalStatus models.AuctionStatus
		winningBid  *models.Bid
		settled     *models.Auction
	)

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		auction, err := s.repo.LockAuctionNoWait(tx, auctionRowID)
		if err != nil {
			if isLockUnavailable(err) {
				return errAuctionLocked
			}
			return fmt.Errorf("failed to lock auction: %w", err)
		}

		// A concurrent sweep (or cancellation) got here first
		if auction.Status.IsTerminal() {
			return nil
		}
		if auction.EndTime.After(time.Now()) {
			return nil
		}

		highest, err := s.repo.GetHighestBid(tx, auction.ID)
		if err != nil {
			return fmt.Errorf("failed to get highest bid: %w", err)
		}

		switch {
		case highest == nil:
			finalStatus = models.AuctionStatusUnsold
		case auction.ReservePrice != nil && highest.Amount.LessThan(*auction.ReservePrice):
			// A highest bid equal to the reserve price wins
			finalStatus = models.AuctionStatusUnsold
		default:
			finalStatus = models.AuctionStatusCompleted
			winningBid = highest
		}

		updates := map[string]interface{}{
			"status": finalStatus,
		}
		if winningBid != nil {
			updates["winning_bid_id"] = winningBid.ID
		}

		if err := s.repo.UpdateAuctionColumns(tx, auction.ID, updates); err != nil {
			return fmt.Errorf("failed to finalize auction: %w", err)
		}

		settled = auction
		return nil
	})
	if err != nil {
		return err
	}

	// Already terminal before this run: nothing happened, nothing to announce
	if settled == nil {
		return nil
	}

	fields := map[string]any{
		"auction_id": settled.PublicID,
		"status":     finalStatus,
	}
	if winningBid != nil {
		fields["winning_bid_id"] = winningBid.PublicID
		fields["winner_id"] = winningBid.BidderID
		fields["amount"] = winningBid.Amount.String()
	}
	logging.Info("auction settled", fields)

	if s.publisher != nil {
		updated, err := s.repo.GetAuctionByPublicID(ctx, settled.PublicID)
		if err != nil {
			logging.Warn("failed to reload settled auction for broadcast", map[string]any{
				"auction_id": settled.PublicID,
				"error":      err.Error(),
			})
			return nil
		}
		s.publisher.PublishAuctionUpdated(settled.PublicID, &models.AuctionUpdatedEvent{
			Auction: updated,
		})
	}

	return nil
}
