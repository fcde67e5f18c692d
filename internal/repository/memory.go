package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu          sync.RWMutex
	wallets     map[string]model.Wallet         // key: userID
	auctions    map[string]model.Auction        // key: auctionID
	bids        map[string]model.Bid            // key: bidID
	auctionBids map[string][]string             // key: auctionID -> bidIDs in arrival order
	userBids    map[string][]string             // key: userID -> bidIDs in arrival order
	events      map[string][]model.AuctionEvent // key: auctionID
	eventIDs    map[string]struct{}
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		wallets:     make(map[string]model.Wallet),
		auctions:    make(map[string]model.Auction),
		bids:        make(map[string]model.Bid),
		auctionBids: make(map[string][]string),
		userBids:    make(map[string][]string),
		events:      make(map[string][]model.AuctionEvent),
		eventIDs:    make(map[string]struct{}),
	}
}

// CreateWallet stores a new wallet
func (r *MemoryRepo) CreateWallet(_ context.Context, wallet model.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[wallet.UserID]; ok {
		return fmt.Errorf("create wallet for user %s: %w", wallet.UserID, biddingerrors.ErrWalletExists)
	}
	now := time.Now().UTC()
	wallet.CreatedAt, wallet.UpdatedAt = now, now
	r.wallets[wallet.UserID] = wallet
	return nil
}

// GetWallet returns a user's wallet
func (r *MemoryRepo) GetWallet(_ context.Context, userID string) (model.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[userID]
	if !ok {
		return model.Wallet{}, fmt.Errorf("get wallet for user %s: %w", userID, biddingerrors.ErrWalletNotFound)
	}
	return w, nil
}

// CompareAndSwapWallet replaces the wallet if its version is unchanged
func (r *MemoryRepo) CompareAndSwapWallet(_ context.Context, expectedVersion int64, wallet model.Wallet) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.wallets[wallet.UserID]
	if !ok {
		return false, fmt.Errorf("swap wallet for user %s: %w", wallet.UserID, biddingerrors.ErrWalletNotFound)
	}
	if current.Version != expectedVersion {
		return false, nil
	}
	wallet.Version = expectedVersion + 1
	wallet.CreatedAt = current.CreatedAt
	wallet.UpdatedAt = time.Now().UTC()
	r.wallets[wallet.UserID] = wallet
	return true, nil
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}
	if _, ok := r.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionExists)
	}
	now := time.Now().UTC()
	auction.CreatedAt, auction.UpdatedAt = now, now
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns one auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// ListAuctions returns every auction ordered by end time
func (r *MemoryRepo) ListAuctions(_ context.Context) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortByEndTime(lo.Values(r.auctions)), nil
}

// ListOverdueAuctions returns active auctions past their end time
func (r *MemoryRepo) ListOverdueAuctions(_ context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overdue := lo.Filter(lo.Values(r.auctions), func(a model.Auction, _ int) bool {
		return a.Status == model.AuctionActive && a.WinnerID == nil && !a.EndTime.After(now)
	})
	return sortByEndTime(overdue), nil
}

// ListStartableAuctions returns scheduled auctions past their start time
func (r *MemoryRepo) ListStartableAuctions(_ context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	startable := lo.Filter(lo.Values(r.auctions), func(a model.Auction, _ int) bool {
		return a.Status == model.AuctionScheduled && !a.StartTime.After(now)
	})
	return sortByEndTime(startable), nil
}

// TransitionAuction conditionally moves an auction out of status from
func (r *MemoryRepo) TransitionAuction(_ context.Context, auctionID string, from model.AuctionStatus, t AuctionTransition) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return false, fmt.Errorf("transition auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if a.Status != from {
		return false, nil
	}

	a.Status = t.To
	a.UpdatedAt = t.At
	if t.To.Terminal() {
		a.ClosedAt = lo.ToPtr(t.At)
	}
	if t.WinnerID != nil {
		a.WinnerID = lo.ToPtr(*t.WinnerID)
		a.WinningAmount = t.WinningAmount
	}
	if t.ClearLeader {
		a.CurrentBidID, a.CurrentBidderID, a.CurrentAmount = nil, nil, decimal.Zero
	}
	r.auctions[auctionID] = a
	return true, nil
}

// RecordLeadingBid stores bid as the new leader of its auction
func (r *MemoryRepo) RecordLeadingBid(_ context.Context, bid model.Bid, previousBidID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if lo.FromPtr(a.CurrentBidID) != previousBidID {
		return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrConcurrentBid)
	}
	if _, exists := r.bids[bid.BidID]; exists {
		return fmt.Errorf("record bid %s: duplicate bid ID: %w", bid.BidID, biddingerrors.ErrInvalidBid)
	}

	if previousBidID != "" {
		prev, ok := r.bids[previousBidID]
		if !ok {
			return fmt.Errorf("record bid: previous bid %s: %w", previousBidID, biddingerrors.ErrBidNotFound)
		}
		if prev.Status != model.BidSuccess {
			return fmt.Errorf("record bid: previous bid %s is %s: %w", previousBidID, prev.Status, biddingerrors.ErrStaleBidStatus)
		}
		prev.Status = model.BidFailed
		prev.UpdatedAt = bid.CreatedAt
		r.bids[previousBidID] = prev
	}

	bid.Status = model.BidSuccess
	bid.UpdatedAt = bid.CreatedAt
	r.bids[bid.BidID] = bid
	r.auctionBids[bid.AuctionID] = append(r.auctionBids[bid.AuctionID], bid.BidID)
	r.userBids[bid.UserID] = append(r.userBids[bid.UserID], bid.BidID)

	a.CurrentBidID = lo.ToPtr(bid.BidID)
	a.CurrentBidderID = lo.ToPtr(bid.UserID)
	a.CurrentAmount = bid.Amount
	a.UpdatedAt = bid.CreatedAt
	r.auctions[bid.AuctionID] = a
	return nil
}

// RevertLeadingBid restores the leader that preceded bid
func (r *MemoryRepo) RevertLeadingBid(_ context.Context, bid model.Bid, previous *model.Bid, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("revert bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if lo.FromPtr(a.CurrentBidID) != bid.BidID {
		return fmt.Errorf("revert bid %s: %w", bid.BidID, biddingerrors.ErrConcurrentBid)
	}
	stored, ok := r.bids[bid.BidID]
	if !ok {
		return fmt.Errorf("revert bid %s: %w", bid.BidID, biddingerrors.ErrBidNotFound)
	}

	stored.Status = model.BidFailed
	stored.UpdatedAt = at
	r.bids[bid.BidID] = stored

	a.CurrentBidID, a.CurrentBidderID, a.CurrentAmount = nil, nil, decimal.Zero
	if previous != nil {
		prev, ok := r.bids[previous.BidID]
		if !ok {
			return fmt.Errorf("revert bid: previous bid %s: %w", previous.BidID, biddingerrors.ErrBidNotFound)
		}
		prev.Status = model.BidSuccess
		prev.UpdatedAt = at
		r.bids[prev.BidID] = prev
		a.CurrentBidID = lo.ToPtr(prev.BidID)
		a.CurrentBidderID = lo.ToPtr(prev.UserID)
		a.CurrentAmount = prev.Amount
	}
	a.UpdatedAt = at
	r.auctions[bid.AuctionID] = a
	return nil
}

// UpdateBidStatus moves a bid from one status to another
func (r *MemoryRepo) UpdateBidStatus(_ context.Context, bidID string, from, to model.BidStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bids[bidID]
	if !ok {
		return fmt.Errorf("update bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	if b.Status != from {
		return fmt.Errorf("update bid %s from %s: status is %s: %w", bidID, from, b.Status, biddingerrors.ErrStaleBidStatus)
	}
	b.Status = to
	b.UpdatedAt = at
	r.bids[bidID] = b
	return nil
}

// GetBid returns one bid
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return b, nil
}

// GetBidsByAuction returns all bids for an auction in arrival order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.auctionBids[auctionID]
	if len(ids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return r.lookupBids(ids), nil
}

// GetBidsByUser returns all bids placed by a user
func (r *MemoryRepo) GetBidsByUser(_ context.Context, userID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookupBids(r.userBids[userID]), nil
}

// GetHighestSuccessfulBid returns the highest success bid for an auction
func (r *MemoryRepo) GetHighestSuccessfulBid(_ context.Context, auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		winning model.Bid
		found   bool
	)
	for _, id := range r.auctionBids[auctionID] {
		b := r.bids[id]
		if b.Status != model.BidSuccess {
			continue
		}
		if !found || b.Amount.GreaterThan(winning.Amount) || (b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning, found = b, true
		}
	}
	if !found {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return winning, nil
}

// AppendEvent appends an audit record; records are never modified
func (r *MemoryRepo) AppendEvent(_ context.Context, event model.AuctionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.eventIDs[event.EventID]; dup {
		return fmt.Errorf("append event %s: duplicate event ID", event.EventID)
	}
	r.eventIDs[event.EventID] = struct{}{}
	r.events[event.AuctionID] = append(r.events[event.AuctionID], event)
	return nil
}

// GetEventsByAuction returns an auction's audit trail in append order
func (r *MemoryRepo) GetEventsByAuction(_ context.Context, auctionID string) ([]model.AuctionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.AuctionEvent{}, r.events[auctionID]...), nil
}

func (r *MemoryRepo) lookupBids(ids []string) []model.Bid {
	bids := make([]model.Bid, 0, len(ids))
	for _, id := range ids {
		bids = append(bids, r.bids[id])
	}
	return bids
}

func sortByEndTime(auctions []model.Auction) []model.Auction {
	sort.Slice(auctions, func(i, j int) bool {
		if auctions[i].EndTime.Equal(auctions[j].EndTime) {
			return auctions[i].AuctionID < auctions[j].AuctionID
		}
		return auctions[i].EndTime.Before(auctions[j].EndTime)
	})
	return auctions
}
