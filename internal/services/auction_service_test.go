package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"property-market/internal/database"
	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTestDB opens a fresh in-memory database per test. The shared cache
// keeps all connections of one test on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Exec("PRAGMA busy_timeout = 5000")

	// A single connection serializes concurrent transactions; sqlite has a
	// single writer anyway and its lock errors are not retryable here.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	mu      sync.Mutex
	bids    []*models.BidPlacedEvent
	updates []*models.AuctionUpdatedEvent
}

func (p *recordingPublisher) PublishBidPlaced(auctionID uuid.UUID, excludeConnID string, event *models.BidPlacedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bids = append(p.bids, event)
}

func (p *recordingPublisher) PublishAuctionUpdated(auctionID uuid.UUID, event *models.AuctionUpdatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, event)
}

func (p *recordingPublisher) bidCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bids)
}

func (p *recordingPublisher) updateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		PublicID:     uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         models.UserRoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createApprovedProperty(t *testing.T, db *gorm.DB, ownerID uint) *models.Property {
	t.Helper()
	now := time.Now()
	property := &models.Property{
		PublicID:   uuid.New(),
		OwnerID:    ownerID,
		Title:      "Canal House",
		Slug:       fmt.Sprintf("canal-house-%s", uuid.NewString()[:8]),
		Type:       "house",
		Price:      decimal.NewFromInt(350000),
		Currency:   "USD",
		City:       "Amsterdam",
		Country:    "NL",
		Status:     models.PropertyStatusApproved,
		ApprovedAt: &now,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func createTestAuction(t *testing.T, db *gorm.DB, propertyID, sellerID uint, start, end time.Time, startingPrice int64, reservePrice *int64) *models.Auction {
	t.Helper()
	auction := &models.Auction{
		PublicID:      uuid.New(),
		PropertyID:    propertyID,
		SellerID:      sellerID,
		StartTime:     start,
		EndTime:       end,
		StartingPrice: decimal.NewFromInt(startingPrice),
		Status:        models.AuctionStatusActive,
	}
	if reservePrice != nil {
		r := decimal.NewFromInt(*reservePrice)
		auction.ReservePrice = &r
	}
	require.NoError(t, db.Create(auction).Error)
	return auction
}

func int64Ptr(v int64) *int64 { return &v }

func TestAuthorAuction(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	property := createApprovedProperty(t, db, seller.ID)

	req := &models.CreateAuctionRequest{
		PropertyID:    property.PublicID.String(),
		StartTime:     time.Now().Add(time.Hour),
		EndTime:       time.Now().Add(48 * time.Hour),
		StartingPrice: decimal.NewFromInt(100000),
	}

	t.Run("caller must own the listing", func(t *testing.T) {
		_, err := svc.AuthorAuction(context.Background(), stranger.ID, req)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("end must be after start", func(t *testing.T) {
		bad := *req
		bad.EndTime = req.StartTime.Add(-time.Minute)
		_, err := svc.AuthorAuction(context.Background(), seller.ID, &bad)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("start must be in the future", func(t *testing.T) {
		bad := *req
		bad.StartTime = time.Now().Add(-time.Hour)
		_, err := svc.AuthorAuction(context.Background(), seller.ID, &bad)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown property", func(t *testing.T) {
		bad := *req
		bad.PropertyID = uuid.NewString()
		_, err := svc.AuthorAuction(context.Background(), seller.ID, &bad)
		assert.ErrorIs(t, err, ErrPropertyNotFound)
	})

	t.Run("creates a scheduled auction with no current price", func(t *testing.T) {
		auction, err := svc.AuthorAuction(context.Background(), seller.ID, req)
		require.NoError(t, err)
		assert.Equal(t, models.AuctionStatusScheduled, auction.Status)
		assert.Nil(t, auction.CurrentPrice)
		assert.Nil(t, auction.WinningBidID)
	})
}

func TestAuthorAuctionRequiresApprovedListing(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	property := createApprovedProperty(t, db, seller.ID)
	property.Status = models.PropertyStatusPending
	require.NoError(t, db.Save(property).Error)

	_, err := svc.AuthorAuction(context.Background(), seller.ID, &models.CreateAuctionRequest{
		PropertyID:    property.PublicID.String(),
		StartTime:     time.Now().Add(time.Hour),
		EndTime:       time.Now().Add(2 * time.Hour),
		StartingPrice: decimal.NewFromInt(100000),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceBidFloor(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	pub := &recordingPublisher{}
	svc := NewAuctionService(repo, pub, 3)

	seller := createTestUser(t, db, "seller@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	property := createApprovedProperty(t, db, seller.ID)
	auction := createTestAuction(t, db, property.ID, seller.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)

	// Below the starting price
	_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(90000), BidProvenance{})
	assert.ErrorIs(t, err, ErrBidTooLow)

	// Equal to the starting price is still too low: strictly greater required
	_, err = svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(100000), BidProvenance{})
	assert.ErrorIs(t, err, ErrBidTooLow)

	bid, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.True(t, bid.Amount.Equal(decimal.NewFromInt(110000)))

	var updated models.Auction
	require.NoError(t, db.First(&updated, auction.ID).Error)
	require.NotNil(t, updated.CurrentPrice)
	assert.True(t, updated.CurrentPrice.Equal(decimal.NewFromInt(110000)))

	// The new floor is the accepted bid, not the starting price
	_, err = svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
	assert.ErrorIs(t, err, ErrBidTooLow)

	assert.Equal(t, 1, pub.bidCount())
}

func TestPlaceBidWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	property := createApprovedProperty(t, db, seller.ID)

	t.Run("window not yet open", func(t *testing.T) {
		auction := createTestAuction(t, db, property.ID, seller.ID,
			time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 100000, nil)
		_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
		assert.ErrorIs(t, err, ErrAuctionNotActive)
	})

	t.Run("window already closed", func(t *testing.T) {
		auction := createTestAuction(t, db, property.ID, seller.ID,
			time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour), 100000, nil)
		_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
		assert.ErrorIs(t, err, ErrAuctionNotActive)
	})

	t.Run("terminal status", func(t *testing.T) {
		auction := createTestAuction(t, db, property.ID, seller.ID,
			time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)
		require.NoError(t, db.Model(auction).Update("status", models.AuctionStatusCancelled).Error)
		_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
		assert.ErrorIs(t, err, ErrAuctionNotActive)
	})

	t.Run("unknown auction", func(t *testing.T) {
		_, err := svc.PlaceBid(context.Background(), uuid.New(), buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
		assert.ErrorIs(t, err, ErrAuctionNotFound)
	})
}

func TestPlaceBidPromotesScheduledAuction(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	property := createApprovedProperty(t, db, seller.ID)

	// Stored status never flipped, but the window is open
	auction := createTestAuction(t, db, property.ID, seller.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)
	require.NoError(t, db.Model(auction).Update("status", models.AuctionStatusScheduled).Error)

	_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
	require.NoError(t, err)

	var updated models.Auction
	require.NoError(t, db.First(&updated, auction.ID).Error)
	assert.Equal(t, models.AuctionStatusActive, updated.Status)
}

func TestPlaceBidStrictlyIncreasingSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	property := createApprovedProperty(t, db, seller.ID)
	auction := createTestAuction(t, db, property.ID, seller.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)

	amounts := []int64{101000, 105000, 110000, 125000, 130000}
	for _, amount := range amounts {
		_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(amount), BidProvenance{})
		require.NoError(t, err)
	}

	var bids []models.Bid
	require.NoError(t, db.Where("auction_id = ?", auction.ID).Order("created_at ASC, id ASC").Find(&bids).Error)
	require.Len(t, bids, len(amounts))

	prev := decimal.NewFromInt(0)
	for _, bid := range bids {
		assert.True(t, bid.Amount.GreaterThan(prev), "amounts must strictly increase, got %s after %s", bid.Amount, prev)
		prev = bid.Amount
	}

	var updated models.Auction
	require.NoError(t, db.First(&updated, auction.ID).Error)
	require.NotNil(t, updated.CurrentPrice)
	assert.True(t, updated.CurrentPrice.Equal(decimal.NewFromInt(130000)),
		"current_price must equal the maximum accepted bid")
}

// A persistent storage failure is not a serialization conflict: it must
// surface as a plain error, not as a retry-me conflict.
func TestPlaceBidStorageFailureIsNotConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 3)

	seller := createTestUser(t, db, "seller@example.com")
	buyer := createTestUser(t, db, "buyer@example.com")
	property := createApprovedProperty(t, db, seller.ID)
	auction := createTestAuction(t, db, property.ID, seller.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)

	require.NoError(t, db.Migrator().DropTable(&models.Bid{}))

	_, err := svc.PlaceBid(context.Background(), auction.PublicID, buyer.ID, decimal.NewFromInt(110000), BidProvenance{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConflict))
}

// Two bidders race from the same floor. Whatever interleaving the storage
// layer produces, the highest bid always lands and the cached current
// price must never end up below it.
func TestPlaceBidConcurrentNoLostUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	svc := NewAuctionService(repo, &recordingPublisher{}, 5)

	seller := createTestUser(t, db, "seller@example.com")
	buyerA := createTestUser(t, db, "buyer-a@example.com")
	buyerB := createTestUser(t, db, "buyer-b@example.com")
	property := createApprovedProperty(t, db, seller.ID)
	auction := createTestAuction(t, db, property.ID, seller.ID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 100000, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.PlaceBid(context.Background(), auction.PublicID, buyerA.ID, decimal.NewFromInt(110000), BidProvenance{})
	}()
	go func() {
		defer wg.Done()
		svc.PlaceBid(context.Background(), auction.PublicID, buyerB.ID, decimal.NewFromInt(120000), BidProvenance{})
	}()
	wg.Wait()

	var updated models.Auction
	require.NoError(t, db.First(&updated, auction.ID).Error)
	require.NotNil(t, updated.CurrentPrice)
	assert.True(t, updated.CurrentPrice.Equal(decimal.NewFromInt(120000)),
		"current_price must be the maximum accepted bid, got %s", updated.CurrentPrice)

	var bids []models.Bid
	require.NoError(t, db.Where("auction_id = ?", auction.ID).Order("amount ASC").Find(&bids).Error)
	require.NotEmpty(t, bids)
	// The highest submission is always admissible; the lower one is either
	// admitted first or correctly rejected as below the new floor.
	top := bids[len(bids)-1]
	assert.True(t, top.Amount.Equal(decimal.NewFromInt(120000)))
	prev := decimal.NewFromInt(0)
	for _, bid := range bids {
		assert.True(t, bid.Amount.GreaterThan(prev))
		prev = bid.Amount
	}
}
