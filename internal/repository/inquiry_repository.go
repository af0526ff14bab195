package repository

import (
	"context"

	"property-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInquiry creates a new inquiry thread
func (r *Repository) CreateInquiry(ctx context.Context, inquiry *models.PropertyInquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

// GetInquiryByPublicID retrieves an inquiry with its full message thread,
// oldest message first
func (r *Repository) GetInquiryByPublicID(ctx context.Context, publicID uuid.UUID) (*models.PropertyInquiry, error) {
	var inquiry models.PropertyInquiry
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Preload("Sender")
		}).
		Where("public_id = ?", publicID).
		First(&inquiry).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// SaveInquiry persists all fields of an inquiry
func (r *Repository) SaveInquiry(ctx context.Context, inquiry *models.PropertyInquiry) error {
	return r.db.WithContext(ctx).Save(inquiry).Error
}

// CreateInquiryMessage appends a message to a thread
func (r *Repository) CreateInquiryMessage(ctx context.Context, message *models.InquiryMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListBuyerInquiries retrieves the threads a buyer has opened, newest first
func (r *Repository) ListBuyerInquiries(ctx context.Context, buyerID uint) ([]*models.PropertyInquiry, error) {
	var inquiries []*models.PropertyInquiry
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("buyer_id = ?", buyerID).
		Order("updated_at DESC").
		Find(&inquiries).Error
	if err != nil {
		return nil, err
	}
	return inquiries, nil
}

// ListOwnerInquiries retrieves threads on any listing owned by the caller
func (r *Repository) ListOwnerInquiries(ctx context.Context, ownerID uint) ([]*models.PropertyInquiry, error) {
	var inquiries []*models.PropertyInquiry
	err := r.db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = property_inquiries.property_id").
		Where("properties.owner_id = ?", ownerID).
		Preload("Property").
		Preload("Buyer").
		Order("property_inquiries.updated_at DESC").
		Find(&inquiries).Error
	if err != nil {
		return nil, err
	}
	return inquiries, nil
}
