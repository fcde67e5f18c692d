package repository

import (
	"context"
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// WalletDB stores user wallets. Writes go through CompareAndSwapWallet only.
type WalletDB interface {
	CreateWallet(ctx context.Context, wallet model.Wallet) error
	GetWallet(ctx context.Context, userID string) (model.Wallet, error)
	// CompareAndSwapWallet stores wallet if the stored version still equals
	// expectedVersion; the stored version becomes expectedVersion+1.
	CompareAndSwapWallet(ctx context.Context, expectedVersion int64, wallet model.Wallet) (bool, error)
}

// AuctionTransition describes a conditional status change of one auction
type AuctionTransition struct {
	To            model.AuctionStatus
	WinnerID      *string
	WinningAmount *decimal.Decimal
	ClearLeader   bool // drop the current bid pointer; no bid can win
	At            time.Time
}

// AuctionDB defines the auction and bid storage interface
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	// ListOverdueAuctions returns active auctions whose end time is at or before now
	ListOverdueAuctions(ctx context.Context, now time.Time) ([]model.Auction, error)
	// ListStartableAuctions returns scheduled auctions whose start time is at or before now
	ListStartableAuctions(ctx context.Context, now time.Time) ([]model.Auction, error)
	// TransitionAuction applies t only if the auction is still in status from.
	// It reports whether this call performed the transition.
	TransitionAuction(ctx context.Context, auctionID string, from model.AuctionStatus, t AuctionTransition) (bool, error)

	// RecordLeadingBid atomically fails previousBidID (if any), stores bid as
	// success and points the auction at it. The auction's current bid must
	// still be previousBidID, otherwise ErrConcurrentBid is returned.
	RecordLeadingBid(ctx context.Context, bid model.Bid, previousBidID string) error
	// RevertLeadingBid undoes RecordLeadingBid: bid becomes failed and
	// previous (if any) leads again.
	RevertLeadingBid(ctx context.Context, bid model.Bid, previous *model.Bid, at time.Time) error
	UpdateBidStatus(ctx context.Context, bidID string, from, to model.BidStatus, at time.Time) error
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error)
	GetHighestSuccessfulBid(ctx context.Context, auctionID string) (model.Bid, error)
}

// EventLog is the append-only auction audit trail
type EventLog interface {
	AppendEvent(ctx context.Context, event model.AuctionEvent) error
	GetEventsByAuction(ctx context.Context, auctionID string) ([]model.AuctionEvent, error)
}

// Store bundles every persisted record the engine needs
type Store interface {
	WalletDB
	AuctionDB
	EventLog
}
