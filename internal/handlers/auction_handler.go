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

type AuctionHandler struct {
	auctionService *services.AuctionService
}

func NewAuctionHandler(auctionService *services.AuctionService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
	}
}

// ListAuctions returns auctions still inside their bidding window
// GET /api/auctions
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	limit, offset := parsePagination(c)

	auctions, err := h.auctionService.ListOpenAuctions(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch auctions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  auctions,
		"count": len(auctions),
	})
}

// GetAuction returns an auction with its bid history
// GET /api/auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	auction, err := h.auctionService.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, services.ErrAuctionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "auction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch auction"})
		return
	}

	c.JSON(http.StatusOK, auction)
}

// CreateAuction puts an owned, approved listing up for auction
// POST /api/auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	sellerID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auction, err := h.auctionService.AuthorAuction(c.Request.Context(), sellerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this property"})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create auction"})
		}
		return
	}

	c.JSON(http.StatusCreated, auction)
}

// PlaceBid submits a bid on a live auction. The X-Socket-ID header, if
// present, names the caller's realtime connection so the bid broadcast
// skips it.
// POST /api/auctions/:id/bid
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	bidderID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return
	}

	var req models.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prov := services.BidProvenance{
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		ConnectionID: c.GetHeader("X-Socket-ID"),
	}

	bid, err := h.auctionService.PlaceBid(c.Request.Context(), auctionID, bidderID, req.Amount, prov)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "auction not found"})
		case errors.Is(err, services.ErrAuctionNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "auction is not active"})
		case errors.Is(err, services.ErrBidTooLow):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bid must be higher than current price"})
		case errors.Is(err, services.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "bidding is busy, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place bid"})
		}
		return
	}

	c.JSON(http.StatusCreated, bid)
}
