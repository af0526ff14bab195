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

type InquiryHandler struct {
	inquiryService *services.InquiryService
}

func NewInquiryHandler(inquiryService *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
	}
}

// OpenInquiry starts a message thread on a listing
// POST /api/inquiries
func (h *InquiryHandler) OpenInquiry(c *gin.Context) {
	buyerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.OpenInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiryService.OpenInquiry(c.Request.Context(), buyerID, &req)
	if err != nil {
		writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}

// GetInquiry returns a thread with its messages to a participant
// GET /api/inquiries/:id
func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	inquiry, err := h.inquiryService.GetInquiry(c.Request.Context(), userID, publicID)
	if err != nil {
		writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// Reply posts a message to an open thread
// POST /api/inquiries/:id/messages
func (h *InquiryHandler) Reply(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	var req models.InquiryMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.inquiryService.Reply(c.Request.Context(), userID, publicID, req.Message)
	if err != nil {
		writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// CloseInquiry ends a thread
// POST /api/inquiries/:id/close
func (h *InquiryHandler) CloseInquiry(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inquiry id"})
		return
	}

	inquiry, err := h.inquiryService.CloseInquiry(c.Request.Context(), userID, publicID)
	if err != nil {
		writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// ListBuyerInquiries returns the threads the caller opened
// GET /api/inquiries
func (h *InquiryHandler) ListBuyerInquiries(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	inquiries, err := h.inquiryService.ListBuyerInquiries(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inquiries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  inquiries,
		"count": len(inquiries),
	})
}

// ListOwnerInquiries returns threads on the caller's listings
// GET /api/owner/inquiries
func (h *InquiryHandler) ListOwnerInquiries(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	inquiries, err := h.inquiryService.ListOwnerInquiries(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inquiries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  inquiries,
		"count": len(inquiries),
	})
}

func writeInquiryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInquiryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "inquiry not found"})
	case errors.Is(err, services.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this inquiry"})
	case errors.Is(err, services.ErrInquiryClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "inquiry is closed"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
