package lifecycle

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/locks"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/samber/lo"
)

var transitions = map[model.AuctionStatus][]model.AuctionStatus{
	model.AuctionScheduled: {model.AuctionActive, model.AuctionCancelled},
	model.AuctionActive:    {model.AuctionEnded, model.AuctionCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle edge
func CanTransition(from, to model.AuctionStatus) bool {
	return lo.Contains(transitions[from], to)
}

// InitialStatus returns the status a new auction starts in
func InitialStatus(start, now time.Time) model.AuctionStatus {
	if start.After(now) {
		return model.AuctionScheduled
	}
	return model.AuctionActive
}

// Machine owns Auction.Status and Auction.Winner and the per-auction lock.
//
// Lock order is auction lock first, wallet locks second. The lock is not
// reentrant: End, Cancel and Activate expect the caller to already hold it
// via WithAuctionLock.
type Machine struct {
	auctions repository.AuctionDB
	locks    *locks.KeyedMutex
	now      func() time.Time
}

// Option configures a Machine
type Option func(*Machine)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine creates a lifecycle state machine over the auction store
func NewMachine(auctions repository.AuctionDB, opts ...Option) *Machine {
	m := &Machine{
		auctions: auctions,
		locks:    locks.NewKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the machine's current time
func (m *Machine) Now() time.Time {
	return m.now()
}

// WithAuctionLock runs fn while holding the lock for auctionID
func (m *Machine) WithAuctionLock(auctionID string, fn func() error) error {
	return m.locks.WithLock(auctionID, fn)
}

// CheckAcceptingBids validates that bids may be admitted at now. The
// deadline is checked independently of the stored status because the
// closing sweep runs on a delay.
func CheckAcceptingBids(a model.Auction, now time.Time) error {
	switch a.Status {
	case model.AuctionCancelled, model.AuctionScheduled:
		return fmt.Errorf("lifecycle: auction %s is %s: %w", a.AuctionID, a.Status, biddingerrors.ErrAuctionNotActive)
	case model.AuctionEnded:
		return fmt.Errorf("lifecycle: auction %s has ended: %w", a.AuctionID, biddingerrors.ErrAuctionClosed)
	case model.AuctionActive:
		if !now.Before(a.EndTime) {
			return fmt.Errorf("lifecycle: auction %s deadline %s passed: %w", a.AuctionID, a.EndTime.Format(time.RFC3339), biddingerrors.ErrAuctionClosed)
		}
		return nil
	default:
		return fmt.Errorf("lifecycle: auction %s has unknown status %q: %w", a.AuctionID, a.Status, biddingerrors.ErrAuctionNotActive)
	}
}

// Activate moves a scheduled auction to active
func (m *Machine) Activate(ctx context.Context, auctionID string) (bool, error) {
	return m.transition(ctx, auctionID, model.AuctionScheduled, repository.AuctionTransition{To: model.AuctionActive})
}

// End claims the active -> ended transition, recording winner if not nil.
// Only one caller per auction ever receives true.
func (m *Machine) End(ctx context.Context, auctionID string, winner *model.Bid) (bool, error) {
	t := repository.AuctionTransition{To: model.AuctionEnded}
	if winner != nil {
		t.WinnerID = lo.ToPtr(winner.UserID)
		t.WinningAmount = lo.ToPtr(winner.Amount)
	}
	return m.transition(ctx, auctionID, model.AuctionActive, t)
}

// Cancel claims the from -> cancelled transition. A cancelled auction has
// no leader; callers refund from the auction they loaded before the claim.
func (m *Machine) Cancel(ctx context.Context, auctionID string, from model.AuctionStatus) (bool, error) {
	return m.transition(ctx, auctionID, from, repository.AuctionTransition{To: model.AuctionCancelled, ClearLeader: true})
}

func (m *Machine) transition(ctx context.Context, auctionID string, from model.AuctionStatus, t repository.AuctionTransition) (bool, error) {
	if !CanTransition(from, t.To) {
		return false, fmt.Errorf("lifecycle: %s -> %s: %w", from, t.To, biddingerrors.ErrInvalidTransition)
	}
	t.At = m.now()
	claimed, err := m.auctions.TransitionAuction(ctx, auctionID, from, t)
	if err != nil {
		return false, fmt.Errorf("lifecycle: %w", err)
	}
	return claimed, nil
}
