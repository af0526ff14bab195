package services

import (
	"context"
	"fmt"

	"property-market/internal/logging"
	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryService handles buyer-to-owner message threads on listings
type InquiryService struct {
	repo *repository.Repository
}

// NewInquiryService creates a new InquiryService
func NewInquiryService(repo *repository.Repository) *InquiryService {
	return &InquiryService{repo: repo}
}

// OpenInquiry starts a thread on an approved listing with an opening message
func (s *InquiryService) OpenInquiry(ctx context.Context, buyerID uint, req *models.OpenInquiryRequest) (*models.PropertyInquiry, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid property id", ErrInvalidInput)
	}

	property, err := s.repo.GetPropertyByPublicID(ctx, propertyID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	if property.Status != models.PropertyStatusApproved {
		return nil, ErrPropertyNotFound
	}
	if property.OwnerID == buyerID {
		return nil, fmt.Errorf("%w: cannot inquire about your own listing", ErrInvalidInput)
	}

	inquiry := &models.PropertyInquiry{
		PublicID:   uuid.New(),
		PropertyID: property.ID,
		BuyerID:    buyerID,
		Status:     models.InquiryStatusOpen,
	}
	if err := s.repo.CreateInquiry(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	message := &models.InquiryMessage{
		PublicID:  uuid.New(),
		InquiryID: inquiry.ID,
		SenderID:  buyerID,
		Body:      req.Message,
	}
	if err := s.repo.CreateInquiryMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create inquiry message: %w", err)
	}
	inquiry.Messages = []models.InquiryMessage{*message}

	logging.Info("inquiry opened", map[string]any{
		"inquiry_id":  inquiry.PublicID,
		"property_id": property.PublicID,
		"buyer_id":    buyerID,
	})

	return inquiry, nil
}

// GetInquiry retrieves a thread for one of its two participants
func (s *InquiryService) GetInquiry(ctx context.Context, userID uint, publicID uuid.UUID) (*models.PropertyInquiry, error) {
	inquiry, err := s.repo.GetInquiryByPublicID(ctx, publicID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInquiryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}

	if !isParticipant(inquiry, userID) {
		return nil, ErrUnauthorized
	}
	return inquiry, nil
}

// Reply appends a message to an open thread. Either participant may post.
func (s *InquiryService) Reply(ctx context.Context, userID uint, publicID uuid.UUID, body string) (*models.InquiryMessage, error) {
	inquiry, err := s.GetInquiry(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if inquiry.Status != models.InquiryStatusOpen {
		return nil, ErrInquiryClosed
	}

	message := &models.InquiryMessage{
		PublicID:  uuid.New(),
		InquiryID: inquiry.ID,
		SenderID:  userID,
		Body:      body,
	}
	if err := s.repo.CreateInquiryMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create inquiry message: %w", err)
	}

	// Bump updated_at so the thread surfaces in listings
	if err := s.repo.SaveInquiry(ctx, inquiry); err != nil {
		logging.Warn("failed to touch inquiry", map[string]any{
			"inquiry_id": inquiry.PublicID,
			"error":      err.Error(),
		})
	}

	return message, nil
}

// CloseInquiry ends a thread; either participant may close it
func (s *InquiryService) CloseInquiry(ctx context.Context, userID uint, publicID uuid.UUID) (*models.PropertyInquiry, error) {
	inquiry, err := s.GetInquiry(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	inquiry.Status = models.InquiryStatusClosed
	if err := s.repo.SaveInquiry(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to close inquiry: %w", err)
	}

	return inquiry, nil
}

// ListBuyerInquiries retrieves the threads the caller has opened
func (s *InquiryService) ListBuyerInquiries(ctx context.Context, buyerID uint) ([]*models.PropertyInquiry, error) {
	return s.repo.ListBuyerInquiries(ctx, buyerID)
}

// ListOwnerInquiries retrieves threads on the caller's listings
func (s *InquiryService) ListOwnerInquiries(ctx context.Context, ownerID uint) ([]*models.PropertyInquiry, error) {
	return s.repo.ListOwnerInquiries(ctx, ownerID)
}

func isParticipant(inquiry *models.PropertyInquiry, userID uint) bool {
	if inquiry.BuyerID == userID {
		return true
	}
	return inquiry.Property != nil && inquiry.Property.OwnerID == userID
}
