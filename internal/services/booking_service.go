package services

import (
	"context"
	"fmt"
	"time"

	"property-market/internal/logging"
	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingService handles stay requests on bookable listings
type BookingService struct {
	repo *repository.Repository
}

// NewBookingService creates a new BookingService
func NewBookingService(repo *repository.Repository) *BookingService {
	return &BookingService{repo: repo}
}

// RequestBooking creates a pending stay request. The total price is fixed
// from the listing's nightly rate at request time; confirmed bookings on
// the same dates make the window unavailable.
func (s *BookingService) RequestBooking(ctx context.Context, guestID uint, req *models.CreateBookingRequest) (*models.Booking, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid property id", ErrInvalidInput)
	}

	nights := nightsBetween(req.CheckIn, req.CheckOut)
	if nights < 1 {
		return nil, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidInput)
	}
	if req.CheckIn.Before(time.Now()) {
		return nil, fmt.Errorf("%w: check_in must be in the future", ErrInvalidInput)
	}

	property, err := s.repo.GetPropertyByPublicID(ctx, propertyID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.OwnerID == guestID {
		return nil, fmt.Errorf("%w: cannot book your own listing", ErrInvalidInput)
	}
	if !property.Bookable() {
		return nil, ErrNotBookable
	}

	taken, err := s.repo.HasConfirmedOverlap(ctx, property.ID, req.CheckIn, req.CheckOut, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if taken {
		return nil, ErrDatesUnavailable
	}

	booking := &models.Booking{
		PublicID:   uuid.New(),
		PropertyID: property.ID,
		GuestID:    guestID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Guests:     req.Guests,
		TotalPrice: property.NightlyRate.Mul(decimal.NewFromInt(int64(nights))),
		Status:     models.BookingStatusPending,
		Note:       req.Note,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logging.Info("booking requested", map[string]any{
		"booking_id":  booking.PublicID,
		"property_id": property.PublicID,
		"guest_id":    guestID,
		"check_in":    booking.CheckIn,
		"check_out":   booking.CheckOut,
	})

	return booking, nil
}

// ConfirmBooking accepts a pending request. Availability is re-checked so
// two pending requests on the same dates cannot both be confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, ownerID uint, publicID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getOwnedBooking(ctx, ownerID, publicID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: only pending bookings can be confirmed", ErrInvalidInput)
	}

	taken, err := s.repo.HasConfirmedOverlap(ctx, booking.PropertyID, booking.CheckIn, booking.CheckOut, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if taken {
		return nil, ErrDatesUnavailable
	}

	booking.Status = models.BookingStatusConfirmed
	if err := s.repo.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	logging.Info("booking confirmed", map[string]any{
		"booking_id": booking.PublicID,
		"owner_id":   ownerID,
	})

	return booking, nil
}

// DeclineBooking rejects a pending request
func (s *BookingService) DeclineBooking(ctx context.Context, ownerID uint, publicID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getOwnedBooking(ctx, ownerID, publicID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: only pending bookings can be declined", ErrInvalidInput)
	}

	booking.Status = models.BookingStatusDeclined
	if err := s.repo.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to decline booking: %w", err)
	}

	return booking, nil
}

// CancelBooking lets the guest withdraw a pending or confirmed booking
func (s *BookingService) CancelBooking(ctx context.Context, guestID uint, publicID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != guestID {
		return nil, ErrUnauthorized
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: booking can no longer be cancelled", ErrInvalidInput)
	}

	booking.Status = models.BookingStatusCancelled
	if err := s.repo.SaveBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	logging.Info("booking cancelled", map[string]any{
		"booking_id": booking.PublicID,
		"guest_id":   guestID,
	})

	return booking, nil
}

// ListGuestBookings retrieves the caller's stay requests
func (s *BookingService) ListGuestBookings(ctx context.Context, guestID uint) ([]*models.Booking, error) {
	return s.repo.ListGuestBookings(ctx, guestID)
}

// ListOwnerBookings retrieves requests on the caller's listings
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uint) ([]*models.Booking, error) {
	return s.repo.ListOwnerBookings(ctx, ownerID)
}

func (s *BookingService) getBooking(ctx context.Context, publicID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetBookingByPublicID(ctx, publicID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) getOwnedBooking(ctx context.Context, ownerID uint, publicID uuid.UUID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if booking.Property == nil || booking.Property.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	return booking, nil
}

// nightsBetween counts whole nights between two instants
func nightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}
