package services

import (
	"context"
	"fmt"

	"property-market/internal/logging"
	"property-market/internal/models"
	"property-market/internal/repository"
	"property-market/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyService handles listing CRUD and ownership checks
type PropertyService struct {
	repo *repository.Repository
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(repo *repository.Repository) *PropertyService {
	return &PropertyService{repo: repo}
}

// CreateProperty creates a new listing in pending status, awaiting moderation
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID uint, req *models.CreatePropertyRequest) (*models.Property, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if req.NightlyRate != nil && !req.NightlyRate.IsPositive() {
		return nil, fmt.Errorf("%w: nightly_rate must be positive", ErrInvalidInput)
	}

	slug, err := utils.Slugify(req.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slug: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	property := &models.Property{
		PublicID:    uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Slug:        slug,
		Type:        req.Type,
		Description: req.Description,
		Price:       req.Price,
		NightlyRate: req.NightlyRate,
		Currency:    currency,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Status:      models.PropertyStatusPending,
	}

	if err := s.repo.CreateProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	logging.Info("property created", map[string]any{
		"property_id": property.PublicID,
		"owner_id":    ownerID,
		"city":        property.City,
	})

	return property, nil
}

// GetProperty retrieves a listing by public ID
func (s *PropertyService) GetProperty(ctx context.Context, publicID uuid.UUID) (*models.Property, error) {
	property, err := s.repo.GetPropertyByPublicID(ctx, publicID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return property, nil
}

// UpdateProperty applies partial updates to a listing owned by the caller.
// An edit to an approved listing sends it back through moderation.
func (s *PropertyService) UpdateProperty(ctx context.Context, ownerID uint, publicID uuid.UUID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	property, err := s.GetProperty(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if property.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		property.Price = *req.Price
	}
	if req.NightlyRate != nil {
		if !req.NightlyRate.IsPositive() {
			return nil, fmt.Errorf("%w: nightly_rate must be positive", ErrInvalidInput)
		}
		property.NightlyRate = req.NightlyRate
	}
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.Country != nil {
		property.Country = *req.Country
	}

	if property.Status == models.PropertyStatusApproved {
		property.Status = models.PropertyStatusPending
		property.ApprovedAt = nil
		property.ApprovedByID = nil
	}

	if err := s.repo.SaveProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return property, nil
}

// DeleteProperty removes a listing owned by the caller
func (s *PropertyService) DeleteProperty(ctx context.Context, ownerID uint, publicID uuid.UUID) error {
	property, err := s.GetProperty(ctx, publicID)
	if err != nil {
		return err
	}

	if property.OwnerID != ownerID {
		return ErrUnauthorized
	}

	if err := s.repo.DeleteProperty(ctx, property); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	return nil
}

// BrowseProperties retrieves approved listings for public browsing
func (s *PropertyService) BrowseProperties(ctx context.Context, city string, limit, offset int) ([]*models.Property, error) {
	return s.repo.ListApprovedProperties(ctx, city, limit, offset)
}

// ListOwnerProperties retrieves all listings of the caller
func (s *PropertyService) ListOwnerProperties(ctx context.Context, ownerID uint) ([]*models.Property, error) {
	return s.repo.ListOwnerProperties(ctx, ownerID)
}

// FavoriteProperty saves a listing to the caller's favorites. Saving an
// already saved listing is a no-op.
func (s *PropertyService) FavoriteProperty(ctx context.Context, userID uint, publicID uuid.UUID) error {
	property, err := s.GetProperty(ctx, publicID)
	if err != nil {
		return err
	}
	return s.repo.AddFavorite(ctx, userID, property.ID)
}

// UnfavoriteProperty removes a listing from the caller's favorites
func (s *PropertyService) UnfavoriteProperty(ctx context.Context, userID uint, publicID uuid.UUID) error {
	property, err := s.GetProperty(ctx, publicID)
	if err != nil {
		return err
	}
	return s.repo.RemoveFavorite(ctx, userID, property.ID)
}

// ListFavoriteProperties retrieves the caller's saved listings
func (s *PropertyService) ListFavoriteProperties(ctx context.Context, userID uint) ([]*models.Property, error) {
	return s.repo.ListFavoriteProperties(ctx, userID)
}
