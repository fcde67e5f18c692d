package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/fanout"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// Funds is the part of the wallet ledger used when an auction terminates
type Funds interface {
	Release(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error)
	Settle(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error)
}

// Publisher records audit events and delivers targeted notifications
type Publisher interface {
	Record(ctx context.Context, event model.AuctionEvent) (model.AuctionEvent, error)
	NotifyUser(userID string, n fanout.Notification) error
}

// Outcome describes what processing one auction did
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeActivated Outcome = "activated"
	OutcomeClosed    Outcome = "closed"
	OutcomeCancelled Outcome = "cancelled"
)

// Result is the outcome of closing one auction
type Result struct {
	AuctionID string
	Outcome   Outcome
	Winner    *model.Bid
	// Settled is false when a winner exists but settlement failed
	Settled bool
}

// Closer drives the terminal transitions of single auctions. Every method
// holds the auction's lock for the whole claim-and-settle sequence.
type Closer struct {
	repo    repository.AuctionDB
	funds   Funds
	machine *lifecycle.Machine
	events  Publisher
}

// NewCloser creates a Closer
func NewCloser(repo repository.AuctionDB, funds Funds, machine *lifecycle.Machine, events Publisher) *Closer {
	return &Closer{
		repo:    repo,
		funds:   funds,
		machine: machine,
		events:  events,
	}
}

// CloseAuction ends an active auction whose end time has passed, declaring
// the highest successful bid the winner. Auctions that are not due, or that
// another caller already closed, are skipped.
func (c *Closer) CloseAuction(ctx context.Context, auctionID string) (Result, error) {
	var res Result
	err := c.machine.WithAuctionLock(auctionID, func() error {
		var err error
		res, err = c.close(ctx, auctionID)
		return err
	})
	return res, err
}

func (c *Closer) close(ctx context.Context, auctionID string) (Result, error) {
	res := Result{AuctionID: auctionID, Outcome: OutcomeSkipped}

	auction, err := c.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return res, fmt.Errorf("closing: failed to load auction %s: %w", auctionID, err)
	}
	now := c.machine.Now()
	if auction.Status != model.AuctionActive || now.Before(auction.EndTime) {
		return res, nil
	}

	var winner *model.Bid
	highest, err := c.repo.GetHighestSuccessfulBid(ctx, auctionID)
	switch {
	case err == nil:
		winner = &highest
	case !errors.Is(err, biddingerrors.ErrNoBids):
		return res, fmt.Errorf("closing: failed to find highest bid of auction %s: %w", auctionID, err)
	}

	claimed, err := c.machine.End(ctx, auctionID, winner)
	if err != nil {
		return res, fmt.Errorf("closing: %w", err)
	}
	if !claimed {
		return res, nil
	}
	res.Outcome = OutcomeClosed

	if winner == nil {
		c.record(ctx, model.AuctionEvent{
			AuctionID:   auctionID,
			Type:        model.EventAuctionEnded,
			Description: fmt.Sprintf("auction for %s ended without bids", auction.ItemName),
			CreatedAt:   now,
		})
		utils.Info("Auction ended without winner", map[string]any{"auction_id": auctionID})
		return res, nil
	}
	res.Winner = winner

	if err := c.repo.UpdateBidStatus(ctx, winner.BidID, model.BidSuccess, model.BidWon, now); err != nil {
		utils.Error("Failed to mark winning bid", map[string]any{
			"auction_id": auctionID,
			"bid_id":     winner.BidID,
			"error":      err.Error(),
		})
	}

	if _, err := c.funds.Settle(ctx, winner.UserID, winner.Amount); err != nil {
		utils.Alert("Settlement failed for ended auction", map[string]any{
			"auction_id": auctionID,
			"bid_id":     winner.BidID,
			"user_id":    winner.UserID,
			"amount":     winner.Amount.String(),
			"error":      err.Error(),
		})
	} else {
		res.Settled = true
	}

	declared := c.record(ctx, model.AuctionEvent{
		AuctionID:   auctionID,
		Type:        model.EventWinnerDeclared,
		ActorID:     winner.UserID,
		Amount:      winner.Amount,
		Description: fmt.Sprintf("%s won %s for %s", winner.UserID, auction.ItemName, winner.Amount),
		CreatedAt:   now,
	})

	notice := fanout.NotificationFromEvent(declared)
	notice.Type = model.EventAuctionWon
	notice.Description = fmt.Sprintf("you won %s for %s", auction.ItemName, winner.Amount)
	if err := c.events.NotifyUser(winner.UserID, notice); err != nil {
		utils.Warn("Winner notification not delivered", map[string]any{
			"auction_id": auctionID,
			"user_id":    winner.UserID,
			"error":      err.Error(),
		})
	}

	utils.Info("Auction closed", map[string]any{
		"auction_id": auctionID,
		"winner_id":  winner.UserID,
		"amount":     winner.Amount.String(),
		"settled":    res.Settled,
	})
	return res, nil
}

// CancelAuction withdraws a scheduled or active auction. The leading bid is
// failed and its reservation released.
func (c *Closer) CancelAuction(ctx context.Context, auctionID, actorID string) (model.Auction, error) {
	var cancelled model.Auction
	err := c.machine.WithAuctionLock(auctionID, func() error {
		var err error
		cancelled, err = c.cancel(ctx, auctionID, actorID)
		return err
	})
	return cancelled, err
}

func (c *Closer) cancel(ctx context.Context, auctionID, actorID string) (model.Auction, error) {
	auction, err := c.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("closing: failed to load auction %s: %w", auctionID, err)
	}
	if auction.Status.Terminal() {
		return model.Auction{}, fmt.Errorf("closing: auction %s is already %s: %w", auctionID, auction.Status, biddingerrors.ErrInvalidTransition)
	}

	claimed, err := c.machine.Cancel(ctx, auctionID, auction.Status)
	if err != nil {
		return model.Auction{}, fmt.Errorf("closing: %w", err)
	}
	if !claimed {
		return model.Auction{}, fmt.Errorf("closing: auction %s changed status concurrently: %w", auctionID, biddingerrors.ErrInvalidTransition)
	}

	now := c.machine.Now()
	// auction still carries the leader as it was before the transition
	if auction.HasLeader() {
		c.refundLeader(ctx, auction, now)
	}

	c.record(ctx, model.AuctionEvent{
		AuctionID:   auctionID,
		Type:        model.EventAuctionCancelled,
		ActorID:     actorID,
		Description: fmt.Sprintf("auction for %s cancelled", auction.ItemName),
		CreatedAt:   now,
	})
	utils.Info("Auction cancelled", map[string]any{"auction_id": auctionID, "actor_id": actorID})

	updated, err := c.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("closing: failed to reload auction %s: %w", auctionID, err)
	}
	return updated, nil
}

func (c *Closer) refundLeader(ctx context.Context, auction model.Auction, at time.Time) {
	bidID, bidderID := *auction.CurrentBidID, *auction.CurrentBidderID
	if err := c.repo.UpdateBidStatus(ctx, bidID, model.BidSuccess, model.BidFailed, at); err != nil {
		utils.Error("Failed to fail leading bid of cancelled auction", map[string]any{
			"auction_id": auction.AuctionID,
			"bid_id":     bidID,
			"error":      err.Error(),
		})
	}
	if _, err := c.funds.Release(ctx, bidderID, auction.CurrentAmount); err != nil {
		utils.Alert("Failed to release reservation of cancelled auction", map[string]any{
			"auction_id": auction.AuctionID,
			"user_id":    bidderID,
			"amount":     auction.CurrentAmount.String(),
			"error":      err.Error(),
		})
	}
}

// ActivateAuction opens a scheduled auction once its start time has passed
func (c *Closer) ActivateAuction(ctx context.Context, auctionID string) (Result, error) {
	res := Result{AuctionID: auctionID, Outcome: OutcomeSkipped}
	err := c.machine.WithAuctionLock(auctionID, func() error {
		auction, err := c.repo.GetAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("closing: failed to load auction %s: %w", auctionID, err)
		}
		now := c.machine.Now()
		if auction.Status != model.AuctionScheduled || now.Before(auction.StartTime) {
			return nil
		}

		claimed, err := c.machine.Activate(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("closing: %w", err)
		}
		if !claimed {
			return nil
		}
		res.Outcome = OutcomeActivated

		c.record(ctx, model.AuctionEvent{
			AuctionID:   auctionID,
			Type:        model.EventAuctionStarted,
			Amount:      auction.StartingPrice,
			Description: fmt.Sprintf("auction for %s is open for bids", auction.ItemName),
			CreatedAt:   now,
		})
		return nil
	})
	return res, err
}

// record appends an event; a failed append is logged because the transition
// it describes has already happened
func (c *Closer) record(ctx context.Context, event model.AuctionEvent) model.AuctionEvent {
	recorded, err := c.events.Record(ctx, event)
	if err != nil {
		utils.Error("Failed to record auction event", map[string]any{
			"auction_id": event.AuctionID,
			"type":       event.Type,
			"error":      err.Error(),
		})
		return event
	}
	return recorded
}
