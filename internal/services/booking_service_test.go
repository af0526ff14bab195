package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createBookableProperty(t *testing.T, db *gorm.DB, ownerID uint) *models.Property {
	t.Helper()
	property := createApprovedProperty(t, db, ownerID)
	rate := decimal.NewFromInt(150)
	property.NightlyRate = &rate
	require.NoError(t, db.Save(property).Error)
	return property
}

func bookingRequest(propertyID string, daysFromNow, nights int) *models.CreateBookingRequest {
	checkIn := time.Now().AddDate(0, 0, daysFromNow)
	return &models.CreateBookingRequest{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, nights),
		Guests:     2,
	}
}

func TestRequestBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	property := createBookableProperty(t, db, owner.ID)

	booking, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(property.PublicID.String(), 7, 3))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	// 3 nights at the listing's rate of 150
	assert.True(t, booking.TotalPrice.Equal(decimal.NewFromInt(450)))
}

func TestRequestBookingValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	property := createBookableProperty(t, db, owner.ID)

	t.Run("check_out before check_in", func(t *testing.T) {
		req := bookingRequest(property.PublicID.String(), 7, 3)
		req.CheckOut = req.CheckIn.AddDate(0, 0, -1)
		_, err := svc.RequestBooking(ctx, guest.ID, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("check_in in the past", func(t *testing.T) {
		_, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(property.PublicID.String(), -2, 3))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("own listing", func(t *testing.T) {
		_, err := svc.RequestBooking(ctx, owner.ID, bookingRequest(property.PublicID.String(), 7, 3))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("listing without nightly rate", func(t *testing.T) {
		unbookable := createApprovedProperty(t, db, owner.ID)
		_, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(unbookable.PublicID.String(), 7, 3))
		assert.ErrorIs(t, err, ErrNotBookable)
	})
}

func TestConfirmBookingBlocksOverlap(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	first := createTestUser(t, db, "first@example.com")
	second := createTestUser(t, db, "second@example.com")
	property := createBookableProperty(t, db, owner.ID)

	a, err := svc.RequestBooking(ctx, first.ID, bookingRequest(property.PublicID.String(), 7, 3))
	require.NoError(t, err)
	b, err := svc.RequestBooking(ctx, second.ID, bookingRequest(property.PublicID.String(), 8, 3))
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(ctx, owner.ID, a.PublicID)
	require.NoError(t, err)

	// Overlapping second request can no longer be confirmed
	_, err = svc.ConfirmBooking(ctx, owner.ID, b.PublicID)
	assert.ErrorIs(t, err, ErrDatesUnavailable)

	// And a new request on the taken window is rejected outright
	_, err = svc.RequestBooking(ctx, second.ID, bookingRequest(property.PublicID.String(), 7, 3))
	assert.ErrorIs(t, err, ErrDatesUnavailable)
}

func TestBookingTransitionsRequireOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	property := createBookableProperty(t, db, owner.ID)

	booking, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(property.PublicID.String(), 7, 3))
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(ctx, stranger.ID, booking.PublicID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.DeclineBooking(ctx, stranger.ID, booking.PublicID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	declined, err := svc.DeclineBooking(ctx, owner.ID, booking.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusDeclined, declined.Status)

	// Terminal state: no further transitions
	_, err = svc.ConfirmBooking(ctx, owner.ID, booking.PublicID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	property := createBookableProperty(t, db, owner.ID)

	booking, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(property.PublicID.String(), 7, 3))
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, stranger.ID, booking.PublicID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	cancelled, err := svc.CancelBooking(ctx, guest.ID, booking.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// A cancelled window is free again
	other, err := svc.RequestBooking(ctx, stranger.ID, bookingRequest(property.PublicID.String(), 7, 3))
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, owner.ID, other.PublicID)
	require.NoError(t, err)
}

func TestListOwnerBookings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	guest := createTestUser(t, db, "guest@example.com")

	mine := createBookableProperty(t, db, owner.ID)
	theirs := createBookableProperty(t, db, other.ID)

	_, err := svc.RequestBooking(ctx, guest.ID, bookingRequest(mine.PublicID.String(), 7, 2))
	require.NoError(t, err)
	_, err = svc.RequestBooking(ctx, guest.ID, bookingRequest(theirs.PublicID.String(), 7, 2))
	require.NoError(t, err)

	listed, err := svc.ListOwnerBookings(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.PublicID, listed[0].Property.PublicID)

	guestListed, err := svc.ListGuestBookings(ctx, guest.ID)
	require.NoError(t, err)
	assert.Len(t, guestListed, 2)
}

func TestBookingUnknownID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookingService(repository.NewRepository(db))

	owner := createTestUser(t, db, "owner@example.com")

	_, err := svc.ConfirmBooking(context.Background(), owner.ID, uuid.New())
	assert.True(t, errors.Is(err, ErrBookingNotFound))
}
