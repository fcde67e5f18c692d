package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionExists   = errors.New("auction already exists")
	ErrBidNotFound     = errors.New("bid not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrWalletExists    = errors.New("wallet already exists")
	ErrConcurrentBid   = errors.New("auction leader changed concurrently")
	ErrStaleBidStatus  = errors.New("bid status changed concurrently")
)

// business logic errors
var (
	ErrInvalidBid          = errors.New("invalid bid")
	ErrInvalidAuction      = errors.New("invalid auction")
	ErrInvalidUser         = errors.New("invalid user")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrAuctionClosed       = errors.New("auction is closed")
	ErrBidNotHighEnough    = errors.New("bid amount not high enough")
	ErrDuplicateLeaderBid  = errors.New("bidder already leads with an equal or greater bid")
	ErrInvalidTransition   = errors.New("invalid auction status transition")
	ErrInvariantViolation  = errors.New("ledger invariant violation")
	ErrLedgerContention    = errors.New("wallet update retries exhausted")
	ErrNotificationDropped = errors.New("notification not delivered")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// Reason is the stable code returned to clients for a rejected bid
type Reason string

const (
	ReasonInsufficientFunds  Reason = "InsufficientFunds"
	ReasonAuctionNotActive   Reason = "AuctionNotActive"
	ReasonAuctionClosed      Reason = "AuctionClosed"
	ReasonBidNotHighEnough   Reason = "BidNotHighEnough"
	ReasonDuplicateLeaderBid Reason = "DuplicateLeaderBid"
)

var reasons = []struct {
	err    error
	reason Reason
}{
	{ErrInsufficientFunds, ReasonInsufficientFunds},
	{ErrAuctionNotActive, ReasonAuctionNotActive},
	{ErrAuctionClosed, ReasonAuctionClosed},
	{ErrBidNotHighEnough, ReasonBidNotHighEnough},
	{ErrDuplicateLeaderBid, ReasonDuplicateLeaderBid},
}

// ReasonFor returns the rejection code carried by err, if any
func ReasonFor(err error) (Reason, bool) {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason, true
		}
	}
	return "", false
}
