package ledger

import (
	"context"
	"errors"
	"fmt"

	"auction-engine/internal/biddingerrors"
	"auction-engine/internal/locks"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

const defaultMaxAttempts = 8

// Ledger owns every mutation of wallet balances. Operations on one user are
// serialized by a per-user lock; the version check on write additionally
// protects against writers in other processes.
type Ledger struct {
	wallets     repository.WalletDB
	locks       *locks.KeyedMutex
	maxAttempts int
}

// NewLedger creates a Ledger over the given wallet store
func NewLedger(wallets repository.WalletDB) *Ledger {
	return &Ledger{
		wallets:     wallets,
		locks:       locks.NewKeyedMutex(),
		maxAttempts: defaultMaxAttempts,
	}
}

// OpenWallet creates a wallet holding an initial available balance
func (l *Ledger) OpenWallet(ctx context.Context, userID string, initial decimal.Decimal) (model.Wallet, error) {
	if userID == "" {
		return model.Wallet{}, fmt.Errorf("ledger: %w - empty user ID", biddingerrors.ErrInvalidUser)
	}
	if initial.IsNegative() {
		return model.Wallet{}, fmt.Errorf("ledger: %w - negative opening balance", biddingerrors.ErrInvalidAmount)
	}
	w := model.Wallet{UserID: userID, Available: initial, Locked: decimal.Zero}
	if err := l.wallets.CreateWallet(ctx, w); err != nil {
		return model.Wallet{}, fmt.Errorf("ledger: open wallet: %w", err)
	}
	return l.Balance(ctx, userID)
}

// Balance returns the current wallet of a user
func (l *Ledger) Balance(ctx context.Context, userID string) (model.Wallet, error) {
	w, err := l.wallets.GetWallet(ctx, userID)
	if err != nil {
		return model.Wallet{}, fmt.Errorf("ledger: %w", err)
	}
	return w, nil
}

// Credit adds externally funded money to the available balance
func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.mutate(ctx, "credit", userID, amount, func(w *model.Wallet) error {
		w.Available = w.Available.Add(amount)
		return nil
	})
}

// Reserve moves amount from available to locked, or fails with ErrInsufficientFunds
// leaving the wallet untouched
func (l *Ledger) Reserve(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.mutate(ctx, "reserve", userID, amount, func(w *model.Wallet) error {
		if w.Available.LessThan(amount) {
			return fmt.Errorf("ledger: %w - available %s, requested %s", biddingerrors.ErrInsufficientFunds, w.Available, amount)
		}
		w.Available = w.Available.Sub(amount)
		w.Locked = w.Locked.Add(amount)
		return nil
	})
}

// Release moves amount from locked back to available
func (l *Ledger) Release(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.mutate(ctx, "release", userID, amount, func(w *model.Wallet) error {
		if w.Locked.LessThan(amount) {
			return violation("release", userID, w.Locked, amount)
		}
		w.Locked = w.Locked.Sub(amount)
		w.Available = w.Available.Add(amount)
		return nil
	})
}

// Settle permanently removes amount from locked funds
func (l *Ledger) Settle(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error) {
	return l.mutate(ctx, "settle", userID, amount, func(w *model.Wallet) error {
		if w.Locked.LessThan(amount) {
			return violation("settle", userID, w.Locked, amount)
		}
		w.Locked = w.Locked.Sub(amount)
		return nil
	})
}

func (l *Ledger) mutate(ctx context.Context, op, userID string, amount decimal.Decimal, apply func(w *model.Wallet) error) (model.Wallet, error) {
	if !amount.IsPositive() {
		return model.Wallet{}, fmt.Errorf("ledger: %s: %w", op, biddingerrors.ErrInvalidAmount)
	}

	unlock := l.locks.Lock(userID)
	defer unlock()

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		current, err := l.wallets.GetWallet(ctx, userID)
		if err != nil {
			return model.Wallet{}, fmt.Errorf("ledger: %s: %w", op, err)
		}

		next := current
		if err := apply(&next); err != nil {
			if errors.Is(err, biddingerrors.ErrInvariantViolation) {
				utils.Alert("ledger invariant violation", map[string]any{
					"op":      op,
					"user_id": userID,
					"amount":  amount.String(),
					"locked":  current.Locked.String(),
				})
			}
			return model.Wallet{}, err
		}
		if next.Available.IsNegative() || next.Locked.IsNegative() {
			err := violation(op, userID, current.Locked, amount)
			utils.Alert("ledger produced negative balance", map[string]any{"op": op, "user_id": userID})
			return model.Wallet{}, err
		}

		swapped, err := l.wallets.CompareAndSwapWallet(ctx, current.Version, next)
		if err != nil {
			return model.Wallet{}, fmt.Errorf("ledger: %s: %w", op, err)
		}
		if swapped {
			next.Version = current.Version + 1
			utils.Debug("ledger operation applied", map[string]any{
				"op":        op,
				"user_id":   userID,
				"amount":    amount.String(),
				"available": next.Available.String(),
				"locked":    next.Locked.String(),
			})
			return next, nil
		}
		utils.Debug("ledger version conflict, retrying", map[string]any{"op": op, "user_id": userID, "attempt": attempt})
	}
	return model.Wallet{}, fmt.Errorf("ledger: %s for user %s: %w", op, userID, biddingerrors.ErrLedgerContention)
}

func violation(op, userID string, locked, amount decimal.Decimal) error {
	return fmt.Errorf("ledger: %s for user %s: %w - locked %s, requested %s", op, userID, biddingerrors.ErrInvariantViolation, locked, amount)
}
