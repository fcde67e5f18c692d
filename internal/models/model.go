package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Terminal reports whether no further transition may leave this status
func (s AuctionStatus) Terminal() bool {
	return s == AuctionEnded || s == AuctionCancelled
}

// BidStatus is the admission/settlement state of a bid
type BidStatus string

const (
	BidPending BidStatus = "pending"
	BidSuccess BidStatus = "success"
	BidFailed  BidStatus = "failed"
	BidWon     BidStatus = "won"
)

// EventType names an entry in the auction audit trail
type EventType string

const (
	EventAuctionCreated   EventType = "auction_created"
	EventAuctionStarted   EventType = "auction_started"
	EventBidPlaced        EventType = "bid_placed"
	EventWinnerDeclared   EventType = "winner_declared"
	EventAuctionEnded     EventType = "auction_ended"
	EventAuctionCancelled EventType = "auction_cancelled"
	EventAuctionWon       EventType = "auction_won"
)

// Wallet holds a user's spendable and reserved funds
type Wallet struct {
	UserID    string          `json:"user_id" gorm:"primaryKey;type:varchar(64)"`
	Available decimal.Decimal `json:"available_balance" gorm:"type:numeric(20,4);not null"`
	Locked    decimal.Decimal `json:"locked_amount" gorm:"type:numeric(20,4);not null"`
	Version   int64           `json:"version" gorm:"not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Total returns available plus locked funds
func (w Wallet) Total() decimal.Decimal {
	return w.Available.Add(w.Locked)
}

// Auction represents an item up for auction together with its bidding state
type Auction struct {
	AuctionID       string           `json:"auction_id" gorm:"primaryKey;type:varchar(64)"`
	ItemName        string           `json:"item_name" gorm:"type:varchar(255);not null"`
	Description     string           `json:"description" gorm:"type:text"`
	OwnerID         string           `json:"owner_id" gorm:"type:varchar(64)"`
	StartingPrice   decimal.Decimal  `json:"starting_price" gorm:"type:numeric(20,4);not null"`
	StartTime       time.Time        `json:"start_time" gorm:"not null"`
	EndTime         time.Time        `json:"end_time" gorm:"not null;index"`
	Status          AuctionStatus    `json:"status" gorm:"type:varchar(16);not null;index"`
	CurrentBidID    *string          `json:"current_bid_id,omitempty" gorm:"type:varchar(64)"`
	CurrentBidderID *string          `json:"current_bidder_id,omitempty" gorm:"type:varchar(64)"`
	CurrentAmount   decimal.Decimal  `json:"current_amount" gorm:"type:numeric(20,4);not null"`
	WinnerID        *string          `json:"winner_id,omitempty" gorm:"type:varchar(64)"`
	WinningAmount   *decimal.Decimal `json:"winning_amount,omitempty" gorm:"type:numeric(20,4)"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// HasLeader reports whether a successful bid currently leads the auction
func (a Auction) HasLeader() bool {
	return a.CurrentBidID != nil && *a.CurrentBidID != ""
}

// Bid represents a user's bid on an auction
type Bid struct {
	BidID     string          `json:"bid_id" gorm:"primaryKey;type:varchar(64)"`
	AuctionID string          `json:"auction_id" gorm:"type:varchar(64);not null;index"`
	UserID    string          `json:"user_id" gorm:"type:varchar(64);not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	Status    BidStatus       `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AuctionEvent is an immutable audit record
type AuctionEvent struct {
	EventID     string          `json:"event_id" gorm:"primaryKey;type:varchar(64)"`
	AuctionID   string          `json:"auction_id" gorm:"type:varchar(64);not null;index"`
	Type        EventType       `json:"event_type" gorm:"type:varchar(32);not null"`
	ActorID     string          `json:"actor_id,omitempty" gorm:"type:varchar(64)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(20,4)"`
	Description string          `json:"description" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
}
