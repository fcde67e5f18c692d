package helpers

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID string          `json:"auction_id" binding:"required"`
	UserID    string          `json:"user_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    model.BidStatus `json:"status"`
	CreatedAt string          `json:"created_at"`
}

type CreateAuctionRequest struct {
	ItemName      string          `json:"item_name" binding:"required"`
	Description   string          `json:"description"`
	OwnerID       string          `json:"owner_id"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	StartTime     *time.Time      `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
}

type CancelAuctionRequest struct {
	ActorID string `json:"actor_id"`
}

type OpenWalletRequest struct {
	UserID         string          `json:"user_id" binding:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type CreditWalletRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WalletResponse struct {
	UserID    string          `json:"user_id"`
	Available decimal.Decimal `json:"available_balance"`
	Locked    decimal.Decimal `json:"locked_amount"`
	Total     decimal.Decimal `json:"total"`
}

// NewBidResponse converts a bid to its response DTO
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Status:    bid.Status,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewWalletResponse converts a wallet to its response DTO
func NewWalletResponse(w model.Wallet) WalletResponse {
	return WalletResponse{
		UserID:    w.UserID,
		Available: w.Available,
		Locked:    w.Locked,
		Total:     w.Total(),
	}
}
