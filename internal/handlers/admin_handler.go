package handlers

import (
	"errors"
	"net/http"

	"property-market/internal/auth"
	"property-market/internal/models"
	"property-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListPendingProperties returns listings awaiting moderation
// GET /api/admin/properties/pending
func (h *AdminHandler) ListPendingProperties(c *gin.Context) {
	limit, offset := parsePagination(c)

	properties, err := h.adminService.ListPendingProperties(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch pending properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  properties,
		"count": len(properties),
	})
}

// ApproveProperty approves a pending listing
// POST /api/admin/properties/:id/approve
func (h *AdminHandler) ApproveProperty(c *gin.Context) {
	adminID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := h.adminService.ApproveProperty(c.Request.Context(), adminID, publicID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// RejectProperty rejects a pending listing with a reason
// POST /api/admin/properties/:id/reject
func (h *AdminHandler) RejectProperty(c *gin.Context) {
	adminID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req models.RejectPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property, err := h.adminService.RejectProperty(c.Request.Context(), adminID, publicID, req.Reason)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// ListModerationLogs returns moderation history
// GET /api/admin/moderation-logs
func (h *AdminHandler) ListModerationLogs(c *gin.Context) {
	limit, offset := parsePagination(c)

	logs, err := h.adminService.ListModerationLogs(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch moderation logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  logs,
		"count": len(logs),
	})
}
