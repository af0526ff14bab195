package repository

import (
	"context"

	"property-market/internal/models"

	"github.com/google/uuid"
)

// CreateProperty creates a new listing
func (r *Repository) CreateProperty(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// GetPropertyByPublicID retrieves a listing by its public identifier
func (r *Repository) GetPropertyByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&property).Error
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// SaveProperty persists all fields of a listing
func (r *Repository) SaveProperty(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// DeleteProperty removes a listing
func (r *Repository) DeleteProperty(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Delete(property).Error
}

// ListApprovedProperties retrieves approved listings, optionally filtered by city
func (r *Repository) ListApprovedProperties(ctx context.Context, city string, limit, offset int) ([]*models.Property, error) {
	var properties []*models.Property
	query := r.db.WithContext(ctx).Where("status = ?", models.PropertyStatusApproved)

	if city != "" {
		query = query.Where("city = ?", city)
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// ListOwnerProperties retrieves all listings belonging to an owner
func (r *Repository) ListOwnerProperties(ctx context.Context, ownerID uint) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// ListPendingProperties retrieves listings awaiting moderation
func (r *Repository) ListPendingProperties(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PropertyStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// AddFavorite saves a listing for a user, ignoring duplicates
func (r *Repository) AddFavorite(ctx context.Context, userID, propertyID uint) error {
	favorite := &models.FavoriteProperty{UserID: userID, PropertyID: propertyID}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		FirstOrCreate(favorite).Error
}

// RemoveFavorite deletes a user's saved listing, if present
func (r *Repository) RemoveFavorite(ctx context.Context, userID, propertyID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.FavoriteProperty{}).Error
}

// ListFavoriteProperties retrieves the listings a user has saved,
// most recently saved first
func (r *Repository) ListFavoriteProperties(ctx context.Context, userID uint) ([]*models.Property, error) {
	var properties []*models.Property
	err := r.db.WithContext(ctx).
		Joins("JOIN favorite_properties ON favorite_properties.property_id = properties.id").
		Where("favorite_properties.user_id = ?", userID).
		Order("favorite_properties.created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// CreateModerationLog records an admin action
func (r *Repository) CreateModerationLog(ctx context.Context, entry *models.ModerationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListModerationLogs retrieves moderation history, newest first
func (r *Repository) ListModerationLogs(ctx context.Context, limit, offset int) ([]*models.ModerationLog, error) {
	var logs []*models.ModerationLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
