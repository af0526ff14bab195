package repository

import (
	"context"
	"time"

	"property-market/internal/models"

	"github.com/google/uuid"
)

// CreateBooking creates a new stay request
func (r *Repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetBookingByPublicID retrieves a booking with its listing
func (r *Repository) GetBookingByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("public_id = ?", publicID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// SaveBooking persists all fields of a booking
func (r *Repository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// ListGuestBookings retrieves a guest's bookings, newest first
func (r *Repository) ListGuestBookings(ctx context.Context, guestID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListOwnerBookings retrieves bookings on any listing owned by the caller
func (r *Repository) ListOwnerBookings(ctx context.Context, ownerID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("properties.owner_id = ?", ownerID).
		Preload("Property").
		Preload("Guest").
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// HasConfirmedOverlap reports whether a confirmed booking on the listing
// intersects the [checkIn, checkOut) window, excluding one booking row
func (r *Repository) HasConfirmedOverlap(ctx context.Context, propertyID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("property_id = ? AND status = ? AND id <> ?", propertyID, models.BookingStatusConfirmed, excludeID).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
