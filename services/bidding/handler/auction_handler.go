package handler

import (
	"context"
	"fmt"
	"net/http"

	bidding "auction-engine/internal/biddingService"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, req bidding.NewAuction) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
}

// AuctionCanceller performs administrative cancellation
type AuctionCanceller interface {
	CancelAuction(ctx context.Context, auctionID, actorID string) (model.Auction, error)
}

// EventReader reads an auction's audit trail
type EventReader interface {
	Events(ctx context.Context, auctionID string) ([]model.AuctionEvent, error)
}

type AuctionHandler struct {
	service   AuctionServiceInterface
	canceller AuctionCanceller
	events    EventReader
}

func NewAuctionHandler(service AuctionServiceInterface, canceller AuctionCanceller, events EventReader) *AuctionHandler {
	return &AuctionHandler{service: service, canceller: canceller, events: events}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	if req.EndTime.IsZero() {
		helpers.HandleBindError(c, "CreateAuctionHandler", fmt.Errorf("end_time is required"))
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), bidding.NewAuction{
		ItemName:      req.ItemName,
		Description:   req.Description,
		OwnerID:       req.OwnerID,
		StartingPrice: req.StartingPrice,
		StartTime:     lo.FromPtr(req.StartTime),
		EndTime:       req.EndTime,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"item_name": req.ItemName})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"status":     auction.Status,
		"end_time":   auction.EndTime,
	})
}

// ListAuctionsHandler handles GET /auctions?status=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	status := model.AuctionStatus(c.Query("status"))
	auctions, err := h.service.ListAuctions(c.Request.Context(), status)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"status": status})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction retrieved successfully")
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	var req helpers.CancelAuctionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.HandleBindError(c, "CancelAuctionHandler", err)
			return
		}
	}

	auction, err := h.canceller.CancelAuction(c.Request.Context(), auctionID, req.ActorID)
	if err != nil {
		helpers.HandleServiceError(c, "CancelAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction cancelled successfully")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled successfully", map[string]any{
		"auction_id": auctionID,
		"actor_id":   req.ActorID,
	})
}

// GetAuctionEventsHandler handles GET /auctions/:auction_id/events
func (h *AuctionHandler) GetAuctionEventsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if _, err := h.service.GetAuction(c.Request.Context(), auctionID); err != nil {
		helpers.HandleServiceError(c, "GetAuctionEventsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	events, err := h.events.Events(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionEventsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if events == nil {
		events = []model.AuctionEvent{}
	}

	utils.JSONResponse(c, http.StatusOK, events, "events retrieved successfully")
}
