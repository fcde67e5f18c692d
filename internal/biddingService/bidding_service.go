package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Funds is the part of the wallet ledger used by bid admission
type Funds interface {
	Reserve(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error)
	Release(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error)
}

// Publisher records audit events and pushes them to observers
type Publisher interface {
	Record(ctx context.Context, event model.AuctionEvent) (model.AuctionEvent, error)
}

// NewAuction holds the auctioneer supplied fields of an auction
type NewAuction struct {
	ItemName      string
	Description   string
	OwnerID       string
	StartingPrice decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

// BiddingService admits bids and serves the auction read model
type BiddingService struct {
	repo    repository.AuctionDB
	funds   Funds
	machine *lifecycle.Machine
	events  Publisher
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, funds Funds, machine *lifecycle.Machine, events Publisher) *BiddingService {
	return &BiddingService{
		repo:    repo,
		funds:   funds,
		machine: machine,
		events:  events,
	}
}

// PlaceBid admits a bid under the auction's lock. Rejections wrap one of the
// errors that biddingerrors.ReasonFor maps to a reason code.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, userID string, amount decimal.Decimal) (model.Bid, error) {
	if auctionID == "" || userID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing auctionID or userID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}

	var bid model.Bid
	err := s.machine.WithAuctionLock(auctionID, func() error {
		var err error
		bid, err = s.admit(ctx, auctionID, userID, amount)
		return err
	})
	if err != nil {
		return model.Bid{}, err
	}
	return bid, nil
}

// admit must run with the auction lock held
func (s *BiddingService) admit(ctx context.Context, auctionID, userID string, amount decimal.Decimal) (model.Bid, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	now := s.machine.Now()
	if err := lifecycle.CheckAcceptingBids(auction, now); err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if err := validateAmount(auction, userID, amount); err != nil {
		return model.Bid{}, err
	}

	if _, err := s.funds.Reserve(ctx, userID, amount); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to reserve funds for user %s: %w", userID, err)
	}

	var previous *model.Bid
	if auction.HasLeader() {
		prev, err := s.repo.GetBid(ctx, *auction.CurrentBidID)
		if err != nil {
			s.rollbackReservation(ctx, auctionID, userID, amount)
			return model.Bid{}, fmt.Errorf("service: failed to load leading bid of auction %s: %w", auctionID, err)
		}
		previous = &prev
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		Status:    model.BidPending,
		CreatedAt: now,
	}
	if err := s.repo.RecordLeadingBid(ctx, bid, lo.FromPtr(auction.CurrentBidID)); err != nil {
		s.rollbackReservation(ctx, auctionID, userID, amount)
		return model.Bid{}, fmt.Errorf("service: failed to record bid on auction %s by user %s: %w", auctionID, userID, err)
	}
	bid.Status = model.BidSuccess
	bid.UpdatedAt = now

	if previous != nil {
		if _, err := s.funds.Release(ctx, previous.UserID, previous.Amount); err != nil {
			utils.Alert("Failed to release outbid reservation", map[string]any{
				"auction_id":  auctionID,
				"outbid_id":   previous.BidID,
				"outbid_user": previous.UserID,
				"amount":      previous.Amount.String(),
				"error":       err.Error(),
			})
			if revertErr := s.repo.RevertLeadingBid(ctx, bid, previous, now); revertErr != nil {
				utils.Alert("Failed to revert leading bid", map[string]any{
					"auction_id": auctionID,
					"bid_id":     bid.BidID,
					"error":      revertErr.Error(),
				})
			}
			s.rollbackReservation(ctx, auctionID, userID, amount)
			return model.Bid{}, fmt.Errorf("service: failed to release reservation of outbid user %s: %w", previous.UserID, err)
		}
	}

	if _, err := s.events.Record(ctx, model.AuctionEvent{
		AuctionID:   auctionID,
		Type:        model.EventBidPlaced,
		ActorID:     userID,
		Amount:      amount,
		Description: fmt.Sprintf("%s bid %s on %s", userID, amount, auction.ItemName),
		CreatedAt:   now,
	}); err != nil {
		utils.Error("Failed to record bid event", map[string]any{
			"auction_id": auctionID,
			"bid_id":     bid.BidID,
			"error":      err.Error(),
		})
	}

	return bid, nil
}

// validateAmount applies the bid increment rules against the auction's leader
func validateAmount(auction model.Auction, userID string, amount decimal.Decimal) error {
	if !auction.HasLeader() {
		if amount.LessThan(auction.StartingPrice) {
			return fmt.Errorf("service: %w - starting price is %s", biddingerrors.ErrBidNotHighEnough, auction.StartingPrice)
		}
		return nil
	}
	if amount.GreaterThan(auction.CurrentAmount) {
		return nil
	}
	if lo.FromPtr(auction.CurrentBidderID) == userID {
		return fmt.Errorf("service: %w - already leading with %s", biddingerrors.ErrDuplicateLeaderBid, auction.CurrentAmount)
	}
	return fmt.Errorf("service: %w - current highest bid is %s", biddingerrors.ErrBidNotHighEnough, auction.CurrentAmount)
}

func (s *BiddingService) rollbackReservation(ctx context.Context, auctionID, userID string, amount decimal.Decimal) {
	if _, err := s.funds.Release(ctx, userID, amount); err != nil {
		utils.Alert("Failed to roll back bid reservation", map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
			"amount":     amount.String(),
			"error":      err.Error(),
		})
	}
}

// CreateAuction stores a new auction, scheduled when it starts in the future
func (s *BiddingService) CreateAuction(ctx context.Context, req NewAuction) (model.Auction, error) {
	now := s.machine.Now()
	if req.StartTime.IsZero() {
		req.StartTime = now
	}
	if err := validateNewAuction(req, now); err != nil {
		return model.Auction{}, err
	}

	auction := model.Auction{
		AuctionID:     utils.GenerateID(),
		ItemName:      strings.TrimSpace(req.ItemName),
		Description:   req.Description,
		OwnerID:       req.OwnerID,
		StartingPrice: req.StartingPrice,
		StartTime:     req.StartTime.UTC(),
		EndTime:       req.EndTime.UTC(),
		Status:        lifecycle.InitialStatus(req.StartTime, now),
		CurrentAmount: decimal.Zero,
	}
	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	if _, err := s.events.Record(ctx, model.AuctionEvent{
		AuctionID:   auction.AuctionID,
		Type:        model.EventAuctionCreated,
		ActorID:     auction.OwnerID,
		Amount:      auction.StartingPrice,
		Description: fmt.Sprintf("auction for %s created, ends %s", auction.ItemName, auction.EndTime.Format(time.RFC3339)),
		CreatedAt:   now,
	}); err != nil {
		utils.Error("Failed to record auction creation event", map[string]any{
			"auction_id": auction.AuctionID,
			"error":      err.Error(),
		})
	}

	return s.GetAuction(ctx, auction.AuctionID)
}

func validateNewAuction(req NewAuction, now time.Time) error {
	switch {
	case strings.TrimSpace(req.ItemName) == "":
		return fmt.Errorf("service: %w - empty item name", biddingerrors.ErrInvalidAuction)
	case req.StartingPrice.IsNegative():
		return fmt.Errorf("service: %w - negative starting price", biddingerrors.ErrInvalidAuction)
	case !req.EndTime.After(req.StartTime):
		return fmt.Errorf("service: %w - end time must be after start time", biddingerrors.ErrInvalidAuction)
	case !req.EndTime.After(now):
		return fmt.Errorf("service: %w - end time is in the past", biddingerrors.ErrInvalidAuction)
	}
	return nil
}

// GetAuction returns the read model of one auction
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	return auction, nil
}

// ListAuctions returns all auctions, optionally only those in status
func (s *BiddingService) ListAuctions(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	auctions, err := s.repo.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	if status == "" {
		return auctions, nil
	}

	return lo.Filter(auctions, func(a model.Auction, _ int) bool { return a.Status == status }), nil
}

// GetBidsForAuction returns all bids for a specific auction
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if _, err := s.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the current leading bid of an auction, which is the
// won bid once the auction has ended. Scheduled and cancelled auctions have
// no winning bid.
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	auction, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Bid{}, err
	}
	if !auction.HasLeader() || (auction.Status != model.AuctionActive && auction.Status != model.AuctionEnded) {
		return model.Bid{}, fmt.Errorf("service: auction %s is %s: %w", auctionID, auction.Status, biddingerrors.ErrNoBids)
	}

	bid, err := s.repo.GetBid(ctx, *auction.CurrentBidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	if bid.Status != model.BidSuccess && bid.Status != model.BidWon {
		return model.Bid{}, fmt.Errorf("service: leading bid %s is %s: %w", bid.BidID, bid.Status, biddingerrors.ErrNoBids)
	}

	return bid, nil
}

// GetBidsByUser returns every bid a user has placed
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidUser)
	}

	bids, err := s.repo.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", userID, err)
	}

	return bids, nil
}

// GetAuctionsByUser returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error) {
	bids, err := s.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := lo.Uniq(lo.Map(bids, func(b model.Bid, _ int) string { return b.AuctionID }))
	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		a, err := s.repo.GetAuction(ctx, id)
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
		}
		auctions = append(auctions, a)
	}

	return auctions, nil
}
