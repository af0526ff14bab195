package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"property-market/internal/auth"
	"property-market/internal/models"
	"property-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// BrowseProperties returns approved listings
// GET /api/properties
func (h *PropertyHandler) BrowseProperties(c *gin.Context) {
	city := c.Query("city")
	limit, offset := parsePagination(c)

	properties, err := h.propertyService.BrowseProperties(c.Request.Context(), city, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  properties,
		"count": len(properties),
	})
}

// GetProperty returns a single listing
// GET /api/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	property, err := h.propertyService.GetProperty(c.Request.Context(), publicID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// CreateProperty creates a new listing for the authenticated owner
// POST /api/owner/properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), ownerID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

// ListOwnerProperties returns the caller's listings
// GET /api/owner/properties
func (h *PropertyHandler) ListOwnerProperties(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	properties, err := h.propertyService.ListOwnerProperties(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  properties,
		"count": len(properties),
	})
}

// UpdateProperty applies partial updates to an owned listing
// PUT /api/owner/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property, err := h.propertyService.UpdateProperty(c.Request.Context(), ownerID, publicID, &req)
	if err != nil {
		writePropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// DeleteProperty removes an owned listing
// DELETE /api/owner/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	if err := h.propertyService.DeleteProperty(c.Request.Context(), ownerID, publicID); err != nil {
		writePropertyError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FavoriteProperty saves a listing to the caller's favorites
// POST /api/properties/:id/favorite
func (h *PropertyHandler) FavoriteProperty(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	if err := h.propertyService.FavoriteProperty(c.Request.Context(), userID, publicID); err != nil {
		writePropertyError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnfavoriteProperty removes a listing from the caller's favorites
// DELETE /api/properties/:id/favorite
func (h *PropertyHandler) UnfavoriteProperty(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	if err := h.propertyService.UnfavoriteProperty(c.Request.Context(), userID, publicID); err != nil {
		writePropertyError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListFavorites returns the caller's saved listings
// GET /api/favorites
func (h *PropertyHandler) ListFavorites(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	properties, err := h.propertyService.ListFavoriteProperties(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  properties,
		"count": len(properties),
	})
}

func writePropertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this property"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
