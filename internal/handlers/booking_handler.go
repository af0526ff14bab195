package handlers

import (
	"context"
	"errors"
	"net/http"

	"property-market/internal/auth"
	"property-market/internal/models"
	"property-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// RequestBooking creates a pending stay request on a bookable listing
// POST /api/bookings
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	guestID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.RequestBooking(c.Request.Context(), guestID, &req)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListGuestBookings returns the caller's stay requests
// GET /api/bookings
func (h *BookingHandler) ListGuestBookings(c *gin.Context) {
	guestID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListGuestBookings(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  bookings,
		"count": len(bookings),
	})
}

// ListOwnerBookings returns requests on the caller's listings
// GET /api/owner/bookings
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	ownerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListOwnerBookings(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  bookings,
		"count": len(bookings),
	})
}

// ConfirmBooking accepts a pending request on an owned listing
// POST /api/bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.bookingService.ConfirmBooking)
}

// DeclineBooking rejects a pending request on an owned listing
// POST /api/bookings/:id/decline
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	h.transition(c, h.bookingService.DeclineBooking)
}

// CancelBooking withdraws the caller's own booking
// POST /api/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, h.bookingService.CancelBooking)
}

// transition runs one status change on a booking named by the :id param
func (h *BookingHandler) transition(c *gin.Context, action func(context.Context, uint, uuid.UUID) (*models.Booking, error)) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	publicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := action(c.Request.Context(), userID, publicID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, services.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, services.ErrNotBookable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "listing does not accept bookings"})
	case errors.Is(err, services.ErrDatesUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "dates are no longer available"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
