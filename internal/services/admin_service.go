package services

import (
	"context"
	"fmt"
	"time"

	"property-market/internal/logging"
	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService handles listing moderation
type AdminService struct {
	repo *repository.Repository
}

// NewAdminService creates a new AdminService
func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// ApproveProperty marks a listing approved and records the moderation action
func (s *AdminService) ApproveProperty(ctx context.Context, adminID uint, publicID uuid.UUID) (*models.Property, error) {
	property, err := s.repo.GetPropertyByPublicID(ctx, publicID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	previousStatus := property.Status
	now := time.Now()

	property.Status = models.PropertyStatusApproved
	property.ApprovedAt = &now
	property.ApprovedByID = &adminID
	property.RejectionReason = nil

	if err := s.repo.SaveProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to approve property: %w", err)
	}

	s.logModeration(ctx, property, adminID, "property_approved", nil, previousStatus)

	logging.Info("property approved", map[string]any{
		"property_id": property.PublicID,
		"admin_id":    adminID,
	})

	return property, nil
}

// RejectProperty marks a listing rejected with a reason and records the action
func (s *AdminService) RejectProperty(ctx context.Context, adminID uint, publicID uuid.UUID, reason string) (*models.Property, error) {
	property, err := s.repo.GetPropertyByPublicID(ctx, publicID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	previousStatus := property.Status

	property.Status = models.PropertyStatusRejected
	property.ApprovedAt = nil
	property.ApprovedByID = &adminID
	property.RejectionReason = &reason

	if err := s.repo.SaveProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to reject property: %w", err)
	}

	s.logModeration(ctx, property, adminID, "property_rejected", &reason, previousStatus)

	logging.Info("property rejected", map[string]any{
		"property_id": property.PublicID,
		"admin_id":    adminID,
		"reason":      reason,
	})

	return property, nil
}

// ListPendingProperties retrieves listings awaiting moderation
func (s *AdminService) ListPendingProperties(ctx context.Context, limit, offset int) ([]*models.Property, error) {
	return s.repo.ListPendingProperties(ctx, limit, offset)
}

// ListModerationLogs retrieves moderation history
func (s *AdminService) ListModerationLogs(ctx context.Context, limit, offset int) ([]*models.ModerationLog, error) {
	return s.repo.ListModerationLogs(ctx, limit, offset)
}

func (s *AdminService) logModeration(ctx context.Context, property *models.Property, adminID uint, action string, reason *string, from models.PropertyStatus) {
	entry := &models.ModerationLog{
		PropertyID: property.ID,
		AdminID:    adminID,
		Action:     action,
		Reason:     reason,
		FromStatus: string(from),
		ToStatus:   string(property.Status),
	}

	if err := s.repo.CreateModerationLog(ctx, entry); err != nil {
		logging.Warn("failed to write moderation log", map[string]any{
			"property_id": property.PublicID,
			"action":      action,
			"error":       err.Error(),
		})
	}
}
