package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" database/sql driver
)

// Supported store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenGorm connects to the configured database and migrates the schema
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = &sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	default:
		return nil, fmt.Errorf("open store: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open store: get sql DB: %w", err)
	}
	if driver == DriverSQLite {
		// a single connection keeps :memory: databases shared and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.Wallet{}, &model.Auction{}, &model.Bid{}, &model.AuctionEvent{}); err != nil {
		return nil, fmt.Errorf("open store: migrate schema: %w", err)
	}

	utils.Info("store connected", map[string]any{"driver": driver})
	return db, nil
}

// GormRepo implements Store on top of gorm
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo wraps an open gorm connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// CreateWallet stores a new wallet
func (r *GormRepo) CreateWallet(ctx context.Context, wallet model.Wallet) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet)
	if res.Error != nil {
		return fmt.Errorf("create wallet for user %s: %w", wallet.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("create wallet for user %s: %w", wallet.UserID, biddingerrors.ErrWalletExists)
	}
	return nil
}

// GetWallet returns a user's wallet
func (r *GormRepo) GetWallet(ctx context.Context, userID string) (model.Wallet, error) {
	var w model.Wallet
	if err := r.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error; err != nil {
		return model.Wallet{}, fmt.Errorf("get wallet for user %s: %w", userID, notFound(err, biddingerrors.ErrWalletNotFound))
	}
	return w, nil
}

// CompareAndSwapWallet replaces the balance pair if the version is unchanged
func (r *GormRepo) CompareAndSwapWallet(ctx context.Context, expectedVersion int64, wallet model.Wallet) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Wallet{}).
		Where("user_id = ? AND version = ?", wallet.UserID, expectedVersion).
		Updates(map[string]any{
			"available":  wallet.Available,
			"locked":     wallet.Locked,
			"version":    expectedVersion + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("swap wallet for user %s: %w", wallet.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetWallet(ctx, wallet.UserID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// CreateAuction stores a new auction
func (r *GormRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&auction)
	if res.Error != nil {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionExists)
	}
	return nil
}

// GetAuction returns one auction
func (r *GormRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var a model.Auction
	if err := r.db.WithContext(ctx).First(&a, "auction_id = ?", auctionID).Error; err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, notFound(err, biddingerrors.ErrAuctionNotFound))
	}
	return a, nil
}

// ListAuctions returns every auction ordered by end time
func (r *GormRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	var auctions []model.Auction
	if err := r.db.WithContext(ctx).Order("end_time ASC, auction_id ASC").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// ListOverdueAuctions returns active auctions past their end time
func (r *GormRepo) ListOverdueAuctions(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND winner_id IS NULL AND end_time <= ?", model.AuctionActive, now).
		Order("end_time ASC, auction_id ASC").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue auctions: %w", err)
	}
	return auctions, nil
}

// ListStartableAuctions returns scheduled auctions past their start time
func (r *GormRepo) ListStartableAuctions(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_time <= ?", model.AuctionScheduled, now).
		Order("end_time ASC, auction_id ASC").
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("list startable auctions: %w", err)
	}
	return auctions, nil
}

// TransitionAuction conditionally moves an auction out of status from
func (r *GormRepo) TransitionAuction(ctx context.Context, auctionID string, from model.AuctionStatus, t AuctionTransition) (bool, error) {
	updates := map[string]any{
		"status":     t.To,
		"updated_at": t.At,
	}
	if t.To.Terminal() {
		updates["closed_at"] = t.At
	}
	if t.WinnerID != nil {
		updates["winner_id"] = *t.WinnerID
		updates["winning_amount"] = t.WinningAmount
	}
	if t.ClearLeader {
		updates["current_bid_id"] = nil
		updates["current_bidder_id"] = nil
		updates["current_amount"] = decimal.Zero
	}

	res := r.db.WithContext(ctx).Model(&model.Auction{}).
		Where("auction_id = ? AND status = ?", auctionID, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition auction %s: %w", auctionID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetAuction(ctx, auctionID); err != nil {
			return false, fmt.Errorf("transition auction: %w", err)
		}
		return false, nil
	}
	return true, nil
}

// RecordLeadingBid stores bid as the new leader of its auction in one transaction
func (r *GormRepo) RecordLeadingBid(ctx context.Context, bid model.Bid, previousBidID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if previousBidID != "" {
			res := tx.Model(&model.Bid{}).
				Where("bid_id = ? AND status = ?", previousBidID, model.BidSuccess).
				Updates(map[string]any{"status": model.BidFailed, "updated_at": bid.CreatedAt})
			if res.Error != nil {
				return fmt.Errorf("record bid: fail previous bid %s: %w", previousBidID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("record bid: previous bid %s: %w", previousBidID, biddingerrors.ErrStaleBidStatus)
			}
		}

		bid.Status = model.BidSuccess
		bid.UpdatedAt = bid.CreatedAt
		if err := tx.Create(&bid).Error; err != nil {
			return fmt.Errorf("record bid %s: %w", bid.BidID, err)
		}

		res := leaderGuard(tx.Model(&model.Auction{}), bid.AuctionID, previousBidID).
			Updates(map[string]any{
				"current_bid_id":    bid.BidID,
				"current_bidder_id": bid.UserID,
				"current_amount":    bid.Amount,
				"updated_at":        bid.CreatedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, res.Error)
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&model.Auction{}, "auction_id = ?", bid.AuctionID).Error; err != nil {
				return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, notFound(err, biddingerrors.ErrAuctionNotFound))
			}
			return fmt.Errorf("record bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrConcurrentBid)
		}
		return nil
	})
}

// RevertLeadingBid restores the leader that preceded bid in one transaction
func (r *GormRepo) RevertLeadingBid(ctx context.Context, bid model.Bid, previous *model.Bid, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Bid{}).Where("bid_id = ?", bid.BidID).
			Updates(map[string]any{"status": model.BidFailed, "updated_at": at}).Error; err != nil {
			return fmt.Errorf("revert bid %s: %w", bid.BidID, err)
		}

		pointer := map[string]any{
			"current_bid_id":    nil,
			"current_bidder_id": nil,
			"current_amount":    decimal.Zero,
			"updated_at":        at,
		}
		if previous != nil {
			if err := tx.Model(&model.Bid{}).Where("bid_id = ?", previous.BidID).
				Updates(map[string]any{"status": model.BidSuccess, "updated_at": at}).Error; err != nil {
				return fmt.Errorf("revert bid: restore %s: %w", previous.BidID, err)
			}
			pointer["current_bid_id"] = previous.BidID
			pointer["current_bidder_id"] = previous.UserID
			pointer["current_amount"] = previous.Amount
		}

		res := tx.Model(&model.Auction{}).
			Where("auction_id = ? AND current_bid_id = ?", bid.AuctionID, bid.BidID).
			Updates(pointer)
		if res.Error != nil {
			return fmt.Errorf("revert bid %s: %w", bid.BidID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("revert bid %s: %w", bid.BidID, biddingerrors.ErrConcurrentBid)
		}
		return nil
	})
}

// UpdateBidStatus moves a bid from one status to another
func (r *GormRepo) UpdateBidStatus(ctx context.Context, bidID string, from, to model.BidStatus, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Bid{}).
		Where("bid_id = ? AND status = ?", bidID, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if res.Error != nil {
		return fmt.Errorf("update bid %s: %w", bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetBid(ctx, bidID); err != nil {
			return fmt.Errorf("update bid: %w", err)
		}
		return fmt.Errorf("update bid %s from %s: %w", bidID, from, biddingerrors.ErrStaleBidStatus)
	}
	return nil
}

// GetBid returns one bid
func (r *GormRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	var b model.Bid
	if err := r.db.WithContext(ctx).First(&b, "bid_id = ?", bidID).Error; err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, notFound(err, biddingerrors.ErrBidNotFound))
	}
	return b, nil
}

// GetBidsByAuction returns all bids for an auction in arrival order
func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("created_at ASC, bid_id ASC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

// GetBidsByUser returns all bids placed by a user
func (r *GormRepo) GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, bid_id ASC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for user %s: %w", userID, err)
	}
	return bids, nil
}

// GetHighestSuccessfulBid returns the highest success bid for an auction
func (r *GormRepo) GetHighestSuccessfulBid(ctx context.Context, auctionID string) (model.Bid, error) {
	var b model.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND status = ?", auctionID, model.BidSuccess).
		Order("amount DESC, created_at ASC").
		First(&b).Error
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, notFound(err, biddingerrors.ErrNoBids))
	}
	return b, nil
}

// AppendEvent appends an audit record
func (r *GormRepo) AppendEvent(ctx context.Context, event model.AuctionEvent) error {
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("append event %s: %w", event.EventID, err)
	}
	return nil
}

// GetEventsByAuction returns an auction's audit trail in append order
func (r *GormRepo) GetEventsByAuction(ctx context.Context, auctionID string) ([]model.AuctionEvent, error) {
	var events []model.AuctionEvent
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("created_at ASC, event_id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("get events for auction %s: %w", auctionID, err)
	}
	return lo.Ternary(events == nil, []model.AuctionEvent{}, events), nil
}

func leaderGuard(q *gorm.DB, auctionID, previousBidID string) *gorm.DB {
	if previousBidID == "" {
		return q.Where("auction_id = ? AND current_bid_id IS NULL", auctionID)
	}
	return q.Where("auction_id = ? AND current_bid_id = ?", auctionID, previousBidID)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
