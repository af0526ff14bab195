package jobs

import (
	"context"
	"time"

	"property-market/internal/logging"
	"property-market/internal/services"
)

// AuctionSweeper periodically settles auctions whose window has closed
type AuctionSweeper struct {
	auctionService *services.AuctionService
	interval       time.Duration
	stopChan       chan struct{}
}

// NewAuctionSweeper creates a new auction sweeper job
func NewAuctionSweeper(auctionService *services.AuctionService, interval time.Duration) *AuctionSweeper {
	return &AuctionSweeper{
		auctionService: auctionService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the settlement loop. It blocks until Stop is called,
// so run it on its own goroutine.
func (as *AuctionSweeper) Start() {
	logging.Info("auction sweeper started", map[string]any{
		"interval": as.interval.String(),
	})

	ticker := time.NewTicker(as.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			as.auctionService.SweepEndedAuctions(context.Background())
		case <-as.stopChan:
			logging.Info("auction sweeper stopped", nil)
			return
		}
	}
}

// Stop stops the settlement loop
func (as *AuctionSweeper) Stop() {
	close(as.stopChan)
}
